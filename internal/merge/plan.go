package merge

import (
	"errors"
	"sort"
	"strings"

	"github.com/mauv0809/ranking-tribble/internal/club"
	"github.com/mauv0809/ranking-tribble/internal/ranking"
)

var (
	ErrSamePlayer           = errors.New("cannot merge a player into itself")
	ErrBothLinkedToAccounts = errors.New("both players are linked to user accounts")
	ErrGenderMismatch       = errors.New("players have different genders")
	ErrSharedEvents         = errors.New("players share events")
)

// Field names reported in Preview.FilledFields.
const (
	FieldCountry          = "country"
	FieldEmail            = "email"
	FieldDateOfBirth      = "date_of_birth"
	FieldExternalRatingID = "external_rating_id"
	FieldAvatarRef        = "avatar_ref"
)

// Preview describes what merging duplicate into primary will change.
type Preview struct {
	PrimaryID         string                   `json:"primary_id"`
	PrimaryName       string                   `json:"primary_name"`
	DuplicateID       string                   `json:"duplicate_id"`
	DuplicateName     string                   `json:"duplicate_name"`
	EventsTransferred int                      `json:"events_transferred"`
	PointsTransferred int                      `json:"points_transferred"`
	PointsByCategory  map[ranking.Category]int `json:"points_by_category"`
	AlternateNames    []string                 `json:"alternate_names_added"`
	FilledFields      []string                 `json:"filled_fields"`
	AccountMoves      bool                     `json:"account_moves"`
	SharedEvents      []string                 `json:"shared_events"`
}

// Outcome is returned by a completed merge.
type Outcome struct {
	EventsTransferred int `json:"events_transferred"`
	PointsTransferred int `json:"points_transferred"`
}

// Plan computes the preview of merging duplicate into primary. It returns the
// populated preview together with ErrSharedEvents so callers can show the
// conflicting events.
func Plan(primary, duplicate club.Player, duplicateResults, primaryResults []club.PlayerResult) (Preview, error) {
	if primary.ID == duplicate.ID {
		return Preview{}, ErrSamePlayer
	}
	if primary.UserID != "" && duplicate.UserID != "" {
		return Preview{}, ErrBothLinkedToAccounts
	}
	if primary.Gender != duplicate.Gender {
		return Preview{}, ErrGenderMismatch
	}

	p := Preview{
		PrimaryID:        primary.ID,
		PrimaryName:      primary.Name,
		DuplicateID:      duplicate.ID,
		DuplicateName:    duplicate.Name,
		PointsByCategory: make(map[ranking.Category]int),
		AlternateNames:   newAlternateNames(primary, duplicate),
		FilledFields:     []string{},
		AccountMoves:     primary.UserID == "" && duplicate.UserID != "",
		SharedEvents:     []string{},
	}
	for _, f := range fillTargets(&primary, duplicate) {
		p.FilledFields = append(p.FilledFields, f.name)
	}

	primaryEvents := make(map[string]bool, len(primaryResults))
	for _, r := range primaryResults {
		primaryEvents[r.EventID] = true
	}
	for _, r := range duplicateResults {
		if primaryEvents[r.EventID] {
			p.SharedEvents = append(p.SharedEvents, r.EventID)
			continue
		}
		p.EventsTransferred++
		p.PointsTransferred += r.PointsAwarded
		p.PointsByCategory[r.Event.Category] += r.PointsAwarded
	}
	sort.Strings(p.SharedEvents)

	if len(p.SharedEvents) > 0 {
		return p, ErrSharedEvents
	}
	return p, nil
}

// Categories lists the categories whose rankings change with the merge.
func (p Preview) Categories() []string {
	cats := make([]string, 0, len(p.PointsByCategory))
	for c := range p.PointsByCategory {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)
	return cats
}

type field struct {
	name string
	dst  *string
	src  string
}

// fillTargets returns the primary fields that are empty while the duplicate
// has a value. Set fields are never overwritten.
func fillTargets(primary *club.Player, duplicate club.Player) []field {
	all := []field{
		{FieldCountry, &primary.Country, duplicate.Country},
		{FieldEmail, &primary.Email, duplicate.Email},
		{FieldDateOfBirth, &primary.DateOfBirth, duplicate.DateOfBirth},
		{FieldExternalRatingID, &primary.ExternalRatingID, duplicate.ExternalRatingID},
		{FieldAvatarRef, &primary.AvatarRef, duplicate.AvatarRef},
	}
	out := all[:0]
	for _, f := range all {
		if *f.dst == "" && f.src != "" {
			out = append(out, f)
		}
	}
	return out
}

// newAlternateNames collects the duplicate's names that the primary does
// not already answer to.
func newAlternateNames(primary, duplicate club.Player) []string {
	known := map[string]bool{strings.ToLower(strings.TrimSpace(primary.Name)): true}
	for _, n := range primary.AlternateNames {
		known[strings.ToLower(strings.TrimSpace(n))] = true
	}
	added := []string{}
	for _, n := range append([]string{duplicate.Name}, duplicate.AlternateNames...) {
		key := strings.ToLower(strings.TrimSpace(n))
		if key == "" || known[key] {
			continue
		}
		known[key] = true
		added = append(added, strings.TrimSpace(n))
	}
	return added
}

// apply folds the duplicate into primary as described by the plan.
func apply(primary *club.Player, duplicate club.Player, p Preview) {
	for _, f := range fillTargets(primary, duplicate) {
		*f.dst = f.src
	}
	primary.AlternateNames = append(primary.AlternateNames, p.AlternateNames...)
	if p.AccountMoves {
		primary.UserID = duplicate.UserID
	}
}
