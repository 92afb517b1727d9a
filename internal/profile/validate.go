package profile

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/document"
)

// ErrShape is returned when the profile handed to the validator is not a map.
var ErrShape = errors.New("profile is not an object")

// Field names of the resume wire schema.
const (
	FieldBasics          = "basics"
	FieldEducations      = "educations"
	FieldExperiences     = "professional_experiences"
	FieldTrainings       = "trainings_and_certifications"
	FieldAwards          = "awards"
	FieldDateOfBirth     = "date_of_birth"
	FieldSkills          = "skills"
	FieldIssuingOrg      = "issuing_organization"
	FieldStartYear       = "start_year"
	FieldEndYear         = "end_year"
	FieldEndMonth        = "end_month"
	FieldIsCurrent       = "is_current"
	FieldCompany         = "company"
	FieldYear            = "year"
	FieldAge             = "age"
	FieldEmails          = "emails"
	FieldURLs            = "urls"
	FieldCurrentTitle    = "current_title"
	FieldFirstName       = "first_name"
	FieldLastName        = "last_name"
	FieldExperienceTitle = "title"
)

// ListSections are the top-level profile fields that hold lists.
var ListSections = []string{FieldEducations, FieldTrainings, FieldExperiences, FieldAwards}

type repairRule struct {
	name  string
	apply func(document.Map) error
}

// Rules touch disjoint parts of the profile, so their order only matters for
// which failure gets reported first.
var repairRules = []repairRule{
	{"basics", repairBasics},
	{FieldEducations, repairEducations},
	{FieldExperiences, repairExperiences},
	{FieldTrainings, repairTrainings},
	{FieldAwards, repairAwards},
}

// Validator repairs a sanitized profile into its storage shape.
type Validator struct {
	Logger *slog.Logger
	// OnFallback, when set, is called with the repair error whenever the
	// original profile is returned.
	OnFallback func(error)
}

// Validate runs the default validator.
func Validate(v document.Value) (document.Value, error) {
	return Validator{}.Validate(v)
}

// Validate returns a repaired copy of v. The input is never modified.
//
// A non-map input fails with ErrShape. Any other problem met while repairing
// (an unexpected type somewhere, or a panic) is logged and the original value
// is returned unchanged with a nil error.
func (val Validator) Validate(v document.Value) (document.Value, error) {
	m, ok := v.(document.Map)
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrShape, kindName(v))
	}
	repaired, err := repair(m)
	if err != nil {
		val.logger().Warn("profile repair failed, keeping original", slog.Any("error", err))
		if val.OnFallback != nil {
			val.OnFallback(err)
		}
		return v, nil
	}
	return repaired, nil
}

func (val Validator) logger() *slog.Logger {
	if val.Logger != nil {
		return val.Logger
	}
	return slog.Default()
}

func repair(m document.Map) (out document.Map, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("repair panicked: %v", r)
		}
	}()

	p := document.Clone(m).(document.Map)
	for _, rule := range repairRules {
		if err := rule.apply(p); err != nil {
			return nil, fmt.Errorf("%s: %w", rule.name, err)
		}
	}
	return p, nil
}

func repairBasics(p document.Map) error {
	raw, present := p[FieldBasics]
	if !present {
		p[FieldBasics] = document.Map{FieldSkills: document.List{}}
		return nil
	}
	basics, ok := raw.(document.Map)
	if !ok {
		return fmt.Errorf("basics is %s", kindName(raw))
	}

	if dob, ok := basics.GetMap(FieldDateOfBirth); ok {
		parts := []string{"year", "month", "day"}
		allZero := true
		for _, f := range parts {
			if !zeroOrAbsent(dob, f) {
				allZero = false
			}
		}
		if allZero {
			delete(basics, FieldDateOfBirth)
		} else {
			for _, f := range parts {
				if zeroOrAbsent(dob, f) {
					delete(dob, f)
				}
			}
		}
	}

	if zeroOrAbsent(basics, FieldAge) {
		delete(basics, FieldAge)
	}

	for _, f := range []string{FieldEmails, FieldURLs} {
		if _, present := basics[f]; present && !nonEmptyList(basics[f]) {
			delete(basics, f)
		}
	}
	if !nonEmptyList(basics[FieldSkills]) {
		basics[FieldSkills] = document.List{}
	}
	return nil
}

func repairEducations(p document.Map) error {
	return filterSection(p, FieldEducations, func(edu document.Map) (bool, error) {
		if zeroOrAbsent(edu, FieldEndYear) || isTrue(edu[FieldIsCurrent]) {
			delete(edu, FieldEndYear)
		}
		started, err := positive(edu, FieldStartYear)
		if err != nil {
			return false, err
		}
		return document.Truthy(edu[FieldIssuingOrg]) && started, nil
	})
}

func repairExperiences(p document.Map) error {
	return filterSection(p, FieldExperiences, func(exp document.Map) (bool, error) {
		for _, f := range []string{FieldEndYear, FieldEndMonth} {
			if isNull(exp, f) {
				delete(exp, f)
			}
		}
		started, err := positive(exp, FieldStartYear)
		if err != nil {
			return false, err
		}
		return document.Truthy(exp[FieldCompany]) && started, nil
	})
}

func repairTrainings(p document.Map) error {
	return filterSection(p, FieldTrainings, func(cert document.Map) (bool, error) {
		if zeroOrAbsent(cert, FieldYear) {
			delete(cert, FieldYear)
		}
		return document.Truthy(cert[FieldIssuingOrg]), nil
	})
}

func repairAwards(p document.Map) error {
	if _, ok := p.GetList(FieldAwards); !ok {
		p[FieldAwards] = document.List{}
	}
	return nil
}

// filterSection keeps the map entries of p[field] accepted by keep, which may
// also edit them. The field always ends up as a list.
func filterSection(p document.Map, field string, keep func(document.Map) (bool, error)) error {
	raw, present := p[field]
	if !present {
		p[field] = document.List{}
		return nil
	}
	entries, ok := raw.(document.List)
	if !ok {
		return fmt.Errorf("%s is %s", field, kindName(raw))
	}
	kept := document.List{}
	for i, e := range entries {
		entry, ok := e.(document.Map)
		if !ok {
			continue
		}
		ok, err := keep(entry)
		if err != nil {
			return fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		if ok {
			kept = append(kept, entry)
		}
	}
	p[field] = kept
	return nil
}

func zeroOrAbsent(m document.Map, key string) bool {
	switch t := m[key].(type) {
	case nil, document.Null:
		return true
	case document.Number:
		return t.IsZero()
	}
	return false
}

func isNull(m document.Map, key string) bool {
	v, present := m[key]
	if !present {
		return false
	}
	_, null := v.(document.Null)
	return v == nil || null
}

func isTrue(v document.Value) bool {
	b, ok := v.(document.Bool)
	return ok && bool(b)
}

func nonEmptyList(v document.Value) bool {
	l, ok := v.(document.List)
	return ok && len(l) > 0
}

// positive reports m[key] > 0. A missing key counts as zero; values that
// cannot be compared with a number are an error.
func positive(m document.Map, key string) (bool, error) {
	switch t := m[key].(type) {
	case nil:
		return false, nil
	case document.Number:
		f, ok := t.Float()
		if !ok {
			return false, fmt.Errorf("%s: malformed number %q", key, string(t))
		}
		return f > 0, nil
	case document.Bool:
		return bool(t), nil
	default:
		return false, fmt.Errorf("%s: cannot compare %s with a number", key, kindName(t))
	}
}

func kindName(v document.Value) string {
	if v == nil {
		return "absent"
	}
	return v.Kind().String()
}
