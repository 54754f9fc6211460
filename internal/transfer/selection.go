package transfer

import "github.com/bnema/wtfcopy/internal/wow"

// Selection is the user's choice of installation, source and destination.
// It is a value: every transition returns a new Selection and the receiver
// is left untouched, so readiness can be checked at any point.
type Selection struct {
	installation *wow.Installation
	srcVersion   *wow.Version
	srcProfile   *wow.Profile
	dstVersion   *wow.Version
	dstProfile   *wow.Profile
}

// NewSelection starts an empty selection over inst. Use it whenever the
// installation is (re)scanned; all version and profile choices are dropped.
func NewSelection(inst *wow.Installation) Selection {
	return Selection{installation: inst}
}

// WithSourceVersion picks the source version and clears the source profile
func (s Selection) WithSourceVersion(v wow.Version) Selection {
	s.srcVersion = &v
	s.srcProfile = nil
	return s
}

// WithSourceProfile picks the source profile
func (s Selection) WithSourceProfile(p wow.Profile) Selection {
	s.srcProfile = &p
	return s
}

// WithDestinationVersion picks the destination version and clears the destination profile
func (s Selection) WithDestinationVersion(v wow.Version) Selection {
	s.dstVersion = &v
	s.dstProfile = nil
	return s
}

// WithDestinationProfile picks the destination profile
func (s Selection) WithDestinationProfile(p wow.Profile) Selection {
	s.dstProfile = &p
	return s
}

// ResetSource clears the source version and profile
func (s Selection) ResetSource() Selection {
	s.srcVersion = nil
	s.srcProfile = nil
	return s
}

// ResetDestination clears the destination version and profile
func (s Selection) ResetDestination() Selection {
	s.dstVersion = nil
	s.dstProfile = nil
	return s
}

// IsReady reports whether all five parts of the selection are chosen
func (s Selection) IsReady() bool {
	return s.installation != nil &&
		s.srcVersion != nil &&
		s.srcProfile != nil &&
		s.dstVersion != nil &&
		s.dstProfile != nil
}

func (s Selection) Installation() *wow.Installation {
	return s.installation
}

func (s Selection) SourceVersion() (wow.Version, bool) {
	return deref(s.srcVersion)
}

func (s Selection) SourceProfile() (wow.Profile, bool) {
	return deref(s.srcProfile)
}

func (s Selection) DestinationVersion() (wow.Version, bool) {
	return deref(s.dstVersion)
}

func (s Selection) DestinationProfile() (wow.Profile, bool) {
	return deref(s.dstProfile)
}

func deref[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}
