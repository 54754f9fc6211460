package wow

import (
	"path/filepath"
	"sort"
	"strings"
)

// Installation is a snapshot of a WoW install's profile tree at scan time
type Installation struct {
	Root     string    `json:"root"`
	Versions []Version `json:"versions"`
}

// Version is a client variant folder (e.g. _retail_) with its own WTF tree
type Version struct {
	Folder   string    `json:"folder"`
	Profiles []Profile `json:"profiles"`
}

// Profile identifies one character's settings within a version
type Profile struct {
	Account           string `json:"account"`
	Realm             string `json:"realm"`
	Character         string `json:"character"`
	HasSavedVariables bool   `json:"has_saved_variables"`
}

var versionNames = map[string]string{
	"_retail_":      "Retail",
	"_ptr_":         "Retail PTR",
	"_classic_":     "Classic",
	"_classic_era_": "Classic Era",
	"_classic_ptr_": "Classic PTR",
}

// DisplayName returns the human name of a version folder, or the folder
// name itself when it is not a known client variant
func (v Version) DisplayName() string {
	if name, ok := versionNames[v.Folder]; ok {
		return name
	}
	return v.Folder
}

func (v Version) String() string {
	return v.DisplayName()
}

// SourceProfiles returns the profiles usable as a copy source. A character
// without a SavedVariables directory can still receive a copy.
func (v Version) SourceProfiles() []Profile {
	var out []Profile
	for _, p := range v.Profiles {
		if p.HasSavedVariables {
			out = append(out, p)
		}
	}
	return out
}

// FindProfile looks up a profile by its exact identifying triple
func (v Version) FindProfile(account, realm, character string) (Profile, bool) {
	for _, p := range v.Profiles {
		if p.Account == account && p.Realm == realm && p.Character == character {
			return p, true
		}
	}
	return Profile{}, false
}

// FindVersion looks up a version by folder name or display name (case-insensitive)
func (i *Installation) FindVersion(name string) (Version, bool) {
	for _, v := range i.Versions {
		if v.Folder == name {
			return v, true
		}
	}
	for _, v := range i.Versions {
		if strings.EqualFold(v.DisplayName(), name) || strings.EqualFold(v.Folder, name) {
			return v, true
		}
	}
	return Version{}, false
}

// rootPath is the installation root as seen through a filesystem rooted at it
const rootPath = "/"

// AccountDir returns the path of an account inside a version. Paths are
// rooted at the installation root; join them onto Installation.Root for an
// OS path.
func AccountDir(versionFolder, account string) string {
	return filepath.Join(rootPath, versionFolder, "WTF", "Account", account)
}

// CharacterDir returns the path of a character, rooted like AccountDir
func CharacterDir(versionFolder string, p Profile) string {
	return filepath.Join(AccountDir(versionFolder, p.Account), p.Realm, p.Character)
}

// Less orders profiles by account, then realm, then character
func (p Profile) Less(o Profile) bool {
	if p.Account != o.Account {
		return p.Account < o.Account
	}
	if p.Realm != o.Realm {
		return p.Realm < o.Realm
	}
	return p.Character < o.Character
}

// Key returns the account/realm/character triple as a single path-like string
func (p Profile) Key() string {
	return p.Account + "/" + p.Realm + "/" + p.Character
}

func (p Profile) String() string {
	return p.Character + " - " + p.Realm
}

// SortProfiles sorts profiles in place by account, realm and character
func SortProfiles(profiles []Profile) {
	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].Less(profiles[j])
	})
}
