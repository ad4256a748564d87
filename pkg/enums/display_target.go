package enums

import "fmt"

// DisplayTarget is the legacy display_on enum. New code composes the
// available_to_users / available_to_admin flags directly.
//
// Deprecated: kept only for callers still speaking the old surface.
type DisplayTarget string

const (
	DisplayTargetFrontEnd DisplayTarget = "front_end"
	DisplayTargetBackEnd  DisplayTarget = "back_end"
	DisplayTargetBoth     DisplayTarget = "both"
)

var validDisplayTargets = []DisplayTarget{
	DisplayTargetFrontEnd,
	DisplayTargetBackEnd,
	DisplayTargetBoth,
}

// IsValid reports whether the value is a known DisplayTarget.
func (d DisplayTarget) IsValid() bool {
	for _, candidate := range validDisplayTargets {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDisplayTarget converts the raw string to DisplayTarget. The empty
// string maps to DisplayTargetBoth, matching the legacy default.
func ParseDisplayTarget(value string) (DisplayTarget, error) {
	if value == "" {
		return DisplayTargetBoth, nil
	}
	for _, candidate := range validDisplayTargets {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid display target %q", value)
}

// Flags translates the legacy target into the two availability flags.
func (d DisplayTarget) Flags() (availableToUsers, availableToAdmin bool) {
	switch d {
	case DisplayTargetFrontEnd:
		return true, false
	case DisplayTargetBackEnd:
		return false, true
	default:
		return true, true
	}
}

// DisplayTargetForFlags translates the availability flags back into the
// legacy enum for callers that still read display_on.
func DisplayTargetForFlags(availableToUsers, availableToAdmin bool) DisplayTarget {
	switch {
	case availableToUsers && !availableToAdmin:
		return DisplayTargetFrontEnd
	case availableToAdmin && !availableToUsers:
		return DisplayTargetBackEnd
	default:
		return DisplayTargetBoth
	}
}
