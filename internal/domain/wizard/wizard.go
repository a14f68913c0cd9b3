// Package wizard models booking creation as two explicit states. Each state
// carries only the data valid in it, so a chosen center cannot exist while
// details are still being collected.
package wizard

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"pickup/internal/domain/entity"
	"pickup/internal/util"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ErrNoCenterSelected blocks submission until a center is chosen.
var ErrNoCenterSelected = errors.New("please select a collection center")

var validate = util.NewValidator()

// Details is the first-step form. ImageLocation is optional and is opened
// only when the booking is submitted.
type Details struct {
	WasteTypeID   int64   `json:"waste_type_id" validate:"required"`
	QuantityKg    float64 `json:"quantity_kg" validate:"required,gte=0.01"`
	PickupDate    string  `json:"pickup_date" validate:"required,datetime=2006-01-02"`
	PickupTime    string  `json:"pickup_time" validate:"required,datetime=15:04"`
	Address       string  `json:"address" validate:"required"`
	ImageLocation string  `json:"waste_image" validate:"-"`
}

// State is either CollectingDetails or SelectingCenter.
type State interface {
	Step() int
	Form() Details
	isState()
}

// CollectingDetails is the initial state.
type CollectingDetails struct {
	Details Details
}

// SelectingCenter is entered once the details are complete.
type SelectingCenter struct {
	Details  Details
	Location *orb.Point            // user position, nil when geolocation failed
	Nearest  *entity.NearestCenter // server's nearest-center answer, if any
	CenterID int64                 // 0 means nothing chosen yet
}

// New starts a wizard, optionally preset with a waste type from the catalogue.
func New(presetWasteTypeID int64) CollectingDetails {
	return CollectingDetails{Details: Details{WasteTypeID: presetWasteTypeID}}
}

// Step is 1 while details are collected.
func (CollectingDetails) Step() int { return 1 }

// Form returns the details entered so far.
func (c CollectingDetails) Form() Details { return c.Details }

func (CollectingDetails) isState() {}

// Step is 2 while a center is selected.
func (SelectingCenter) Step() int { return 2 }

// Form returns the details entered in step 1.
func (s SelectingCenter) Form() Details { return s.Details }

func (SelectingCenter) isState() {}

// Advance moves to center selection. It never talks to the server; it only
// checks that every required field is present and well formed, and that the
// pickup date is not before today in now's location.
func (c CollectingDetails) Advance(now time.Time) (SelectingCenter, error) {
	if err := c.Details.Check(now); err != nil {
		return SelectingCenter{}, err
	}

	return SelectingCenter{Details: c.Details}, nil
}

// Check validates the details without changing state.
func (d Details) Check(now time.Time) error {
	incomplete := &IncompleteError{Invalid: map[string][]string{}}

	if fields := util.FieldMessages(validate.Struct(d)); fields != nil {
		for field, msgs := range fields {
			if msgs[0] == requiredMessage {
				incomplete.Missing = append(incomplete.Missing, field)

				continue
			}
			incomplete.Invalid[field] = msgs
		}
	}

	if _, bad := incomplete.Invalid["pickup_date"]; !bad && d.PickupDate != "" {
		date, err := time.ParseInLocation(DateLayout, d.PickupDate, now.Location())
		y, m, day := now.Date()
		today := time.Date(y, m, day, 0, 0, 0, 0, now.Location())
		if err == nil && date.Before(today) {
			incomplete.Invalid["pickup_date"] = []string{"Pickup date cannot be in the past."}
		}
	}

	if len(incomplete.Missing) == 0 && len(incomplete.Invalid) == 0 {
		return nil
	}
	sort.Strings(incomplete.Missing)

	return incomplete
}

// Back returns to the details form, keeping every field.
func (s SelectingCenter) Back() CollectingDetails {
	return CollectingDetails{Details: s.Details}
}

// Choose records the user's center choice, overriding any preselection.
func (s SelectingCenter) Choose(centerID int64) SelectingCenter {
	s.CenterID = centerID

	return s
}

// Locate records the user's position.
func (s SelectingCenter) Locate(p orb.Point) SelectingCenter {
	s.Location = &p

	return s
}

// ApplyNearest records the nearest center and preselects it unless the
// user already chose one.
func (s SelectingCenter) ApplyNearest(n entity.NearestCenter) SelectingCenter {
	s.Nearest = &n
	if s.CenterID == 0 {
		s.CenterID = n.Center.ID
	}

	return s
}

// Ready is the submission guard.
func (s SelectingCenter) Ready() error {
	if s.CenterID == 0 {
		return ErrNoCenterSelected
	}

	return nil
}

// Estimate is the display-only total: round(price_per_kg * quantity, 2).
// ok is false when the quantity is not positive or the waste type is unknown;
// the estimate is then not shown.
func Estimate(d Details, types []entity.WasteType) (amount float64, ok bool) {
	if d.QuantityKg <= 0 || d.WasteTypeID == 0 {
		return 0, false
	}
	wt, found := entity.FindWasteType(types, d.WasteTypeID)
	if !found {
		return 0, false
	}

	return entity.Round2(wt.PricePerKg.Float64() * d.QuantityKg), true
}

const requiredMessage = "This field is required."

// IncompleteError blocks Advance. Missing lists empty required fields by
// their wire name; Invalid holds messages for malformed ones.
type IncompleteError struct {
	Missing []string
	Invalid map[string][]string
}

// Error implements the error interface
func (e *IncompleteError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	for _, field := range e.invalidNames() {
		parts = append(parts, field+": "+e.Invalid[field][0])
	}

	return "booking details incomplete: " + strings.Join(parts, "; ")
}

// HTTPCode returns the HTTP status code
func (e *IncompleteError) HTTPCode() int {
	return http.StatusBadRequest
}

// ErrorCode returns the business error code
func (e *IncompleteError) ErrorCode() string {
	return "BOOKING_DETAILS_INCOMPLETE"
}

// Message returns the user-friendly error message
func (e *IncompleteError) Message() string {
	if len(e.Missing) > 0 {
		return "Please fill in all required fields."
	}
	if names := e.invalidNames(); len(names) > 0 {
		return e.Invalid[names[0]][0]
	}

	return "Please check the booking details."
}

// Details returns detailed error information
func (e *IncompleteError) Details() string {
	return e.Error()
}

// Fields merges missing and invalid fields in the {"field": ["msg"]} shape.
func (e *IncompleteError) Fields() map[string][]string {
	fields := make(map[string][]string, len(e.Missing)+len(e.Invalid))
	for _, name := range e.Missing {
		fields[name] = []string{requiredMessage}
	}
	for name, msgs := range e.Invalid {
		fields[name] = msgs
	}

	return fields
}

func (e *IncompleteError) invalidNames() []string {
	names := make([]string, 0, len(e.Invalid))
	for name := range e.Invalid {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
