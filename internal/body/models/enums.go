package models

import (
	dErrors "dvi/pkg/domain-errors"
)

// Gender is the apparent gender of a body, drawn from the person registry's set.
type Gender string

const (
	GenderUnknown Gender = "unknown"
	GenderFemale  Gender = "female"
	GenderMale    Gender = "male"
	GenderOther   Gender = "other"
)

var genderCodes = map[Gender]int{
	GenderUnknown: 1,
	GenderFemale:  2,
	GenderMale:    3,
	GenderOther:   4,
}

func ParseGender(s string) (Gender, error) {
	if s == "" {
		return GenderUnknown, nil
	}
	g := Gender(s)
	if _, ok := genderCodes[g]; !ok {
		return "", dErrors.NewField(dErrors.CodeInvalidInput, "apparent_gender", "unknown gender "+s)
	}
	return g, nil
}

func GenderFromCode(code int) (Gender, error) {
	for g, c := range genderCodes {
		if c == code {
			return g, nil
		}
	}
	return "", dErrors.NewField(dErrors.CodeInvalidInput, "apparent_gender", "unknown gender code")
}

func (g Gender) Code() int { return genderCodes[g] }

// AgeGroup is the apparent age bracket of a body.
type AgeGroup string

const (
	AgeUnknown    AgeGroup = "unknown"
	AgeInfant     AgeGroup = "infant"
	AgeChild      AgeGroup = "child"
	AgeAdolescent AgeGroup = "adolescent"
	AgeAdult      AgeGroup = "adult"
	AgeSenior     AgeGroup = "senior"
)

var ageGroupCodes = map[AgeGroup]int{
	AgeUnknown:    1,
	AgeInfant:     2,
	AgeChild:      3,
	AgeAdolescent: 4,
	AgeAdult:      5,
	AgeSenior:     6,
}

func ParseAgeGroup(s string) (AgeGroup, error) {
	if s == "" {
		return AgeUnknown, nil
	}
	a := AgeGroup(s)
	if _, ok := ageGroupCodes[a]; !ok {
		return "", dErrors.NewField(dErrors.CodeInvalidInput, "apparent_age_group", "unknown age group "+s)
	}
	return a, nil
}

func AgeGroupFromCode(code int) (AgeGroup, error) {
	for a, c := range ageGroupCodes {
		if c == code {
			return a, nil
		}
	}
	return "", dErrors.NewField(dErrors.CodeInvalidInput, "apparent_age_group", "unknown age group code")
}

func (a AgeGroup) Code() int { return ageGroupCodes[a] }

// Operation names one of the eight forensic checklist operations.
type Operation string

const (
	OpPersonalEffects Operation = "personal_effects"
	OpBodyRadiology   Operation = "body_radiology"
	OpFingerprints    Operation = "fingerprints"
	OpAnthropology    Operation = "anthropology"
	OpPathology       Operation = "pathology"
	OpEmbalming       Operation = "embalming"
	OpDNA             Operation = "dna"
	OpDental          Operation = "dental"
)

// Operations lists the checklist operations in column order.
var Operations = [NumOperations]Operation{
	OpPersonalEffects, OpBodyRadiology, OpFingerprints, OpAnthropology,
	OpPathology, OpEmbalming, OpDNA, OpDental,
}

const NumOperations = 8

func ParseOperation(s string) (Operation, error) {
	for _, op := range Operations {
		if string(op) == s {
			return op, nil
		}
	}
	return "", dErrors.NewField(dErrors.CodeInvalidInput, "operation", "unknown checklist operation "+s)
}

// Index returns the column position of op, or -1.
func (op Operation) Index() int {
	for i, o := range Operations {
		if o == op {
			return i
		}
	}
	return -1
}
