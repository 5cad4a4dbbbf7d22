package enums

import "fmt"

// ContactType classifies a customer phone contact.
type ContactType string

const (
	ContactTypeWork   ContactType = "Work"
	ContactTypeMobile ContactType = "Mobile"
	ContactTypeHome   ContactType = "Home"
	ContactTypeOther  ContactType = "Other"
)

var validContactTypes = []ContactType{
	ContactTypeWork,
	ContactTypeMobile,
	ContactTypeHome,
	ContactTypeOther,
}

// IsValid reports whether the value is a known contact type.
func (c ContactType) IsValid() bool {
	for _, candidate := range validContactTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseContactType converts the raw string to a ContactType.
func ParseContactType(value string) (ContactType, error) {
	for _, candidate := range validContactTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid contact type %q", value)
}
