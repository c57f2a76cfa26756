package personnel

import (
	"errors"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("personnel record not found")
	ErrInvalidID = errors.New("invalid personnel id")
)

var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

var panPattern = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)

type Residence struct {
	Address string `bson:"address,omitempty" json:"address,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Zip     string `bson:"zip,omitempty" json:"zip,omitempty"`
}

type Contact struct {
	Email string `bson:"email,omitempty" json:"email,omitempty"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
}

type EmergencyContact struct {
	Name     string `bson:"name,omitempty" json:"name,omitempty"`
	Relation string `bson:"relation,omitempty" json:"relation,omitempty"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
}

type FamilyMember struct {
	Name     string `bson:"name" json:"name"`
	Relation string `bson:"relation,omitempty" json:"relation,omitempty"`
	Age      int    `bson:"age,omitempty" json:"age,omitempty"`
}

// Document is one personnel profile. EmployeeID mirrors the relational emp_id by convention only.
type Document struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EmployeeID       int64              `bson:"employee_id" json:"employeeId"`
	Name             string             `bson:"name" json:"name"`
	Gender           string             `bson:"gender,omitempty" json:"gender,omitempty"`
	DOB              string             `bson:"dob,omitempty" json:"dob,omitempty"`
	Residence        Residence          `bson:"residence" json:"residence"`
	PermanentAddress string             `bson:"permanent_address,omitempty" json:"permanentAddress,omitempty"`
	CurrentAddress   string             `bson:"current_address,omitempty" json:"currentAddress,omitempty"`
	Contact          Contact            `bson:"contact" json:"contact"`
	EmergencyContact EmergencyContact   `bson:"emergency_contact" json:"emergencyContact"`
	Family           []FamilyMember     `bson:"family,omitempty" json:"family,omitempty"`
	BloodGroup       string             `bson:"blood_group,omitempty" json:"bloodGroup,omitempty"`
	PAN              string             `bson:"pan,omitempty" json:"pan,omitempty"`
	Qualification    []string           `bson:"qualification,omitempty" json:"qualification,omitempty"`
	Qualifications   []string           `bson:"qualifications,omitempty" json:"qualifications,omitempty"`
	Experience       []string           `bson:"experience,omitempty" json:"experience,omitempty"`
}

// QualificationRecord is the normalized per-employee entry in the qualifications collection.
type QualificationRecord struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	EmployeeID    int64              `bson:"employee_id" json:"employeeId"`
	Name          string             `bson:"name,omitempty" json:"name,omitempty"`
	Qualification []string           `bson:"qualification" json:"qualification"`
	Experience    []string           `bson:"experience" json:"experience"`
}

type Filter struct {
	EmployeeID *int64
}

func ValidBloodGroup(value string) bool {
	value = strings.ToUpper(strings.TrimSpace(value))
	for _, g := range BloodGroups {
		if g == value {
			return true
		}
	}
	return false
}

func ValidPAN(value string) bool {
	return panPattern.MatchString(value)
}

func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}

// CleanList trims entries and drops empties while keeping order.
func CleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
