package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/workplace-booking/internal/application"
	"github.com/example/workplace-booking/internal/persistence"
)

var (
	userCounter     uint64
	floorMapCounter uint64
	resourceCounter uint64
	bookingCounter  uint64
)

var referenceTime = time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate returns the "YYYY-MM-DD" key of ReferenceTime.
func ReferenceDate() string {
	return referenceTime.Format("2006-01-02")
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic user record that can be materialised
// for application or persistence tests.
type UserFixture struct {
	ID          string
	Email       string
	DisplayName string
	IsAdmin     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:          id,
		Email:       fmt.Sprintf("%s@example.com", id),
		DisplayName: fmt.Sprintf("User %03d", idx),
		IsAdmin:     false,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserDisplayName overrides the generated display name.
func WithUserDisplayName(name string) UserOption {
	return func(f *UserFixture) {
		f.DisplayName = name
	}
}

// WithUserAdmin sets the admin flag on the generated fixture.
func WithUserAdmin(isAdmin bool) UserOption {
	return func(f *UserFixture) {
		f.IsAdmin = isAdmin
	}
}

// WithUserTimestamps sets both created and updated timestamps on the fixture.
func WithUserTimestamps(created, updated time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:          f.ID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		IsAdmin:     f.IsAdmin,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, IsAdmin: f.IsAdmin}
}

// Input returns the fixture as an application.UserInput.
func (f UserFixture) Input() application.UserInput {
	return application.UserInput{
		Email:       f.Email,
		DisplayName: f.DisplayName,
		IsAdmin:     f.IsAdmin,
	}
}

// --------------------------- Floor map fixtures ---------------------------

// FloorMapFixture represents a deterministic floor map record.
type FloorMapFixture struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FloorMapOption configures the generated floor map fixture.
type FloorMapOption func(*FloorMapFixture)

// NewFloorMapFixture returns a deterministic floor map fixture with optional
// overrides.
func NewFloorMapFixture(opts ...FloorMapOption) FloorMapFixture {
	idx := atomic.AddUint64(&floorMapCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := FloorMapFixture{
		ID:        fmt.Sprintf("map-%03d", idx),
		Name:      fmt.Sprintf("Floor %03d", idx),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithFloorMapID overrides the generated floor map ID.
func WithFloorMapID(id string) FloorMapOption {
	return func(f *FloorMapFixture) {
		f.ID = id
	}
}

// WithFloorMapName overrides the generated floor map name.
func WithFloorMapName(name string) FloorMapOption {
	return func(f *FloorMapFixture) {
		f.Name = name
	}
}

// Persistence returns the fixture as a persistence.FloorMap value.
func (f FloorMapFixture) Persistence() persistence.FloorMap {
	return persistence.FloorMap{
		ID:        f.ID,
		Name:      f.Name,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// --------------------------- Resource fixtures ---------------------------

// ResourceFixture represents a deterministic desk or meeting room record.
type ResourceFixture struct {
	ID        string
	MapID     string
	Name      string
	Type      persistence.ResourceType
	Status    persistence.ResourceStatus
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ResourceOption configures the generated resource fixture.
type ResourceOption func(*ResourceFixture)

// NewDeskFixture returns a deterministic desk fixture with optional overrides.
func NewDeskFixture(mapID string, opts ...ResourceOption) ResourceFixture {
	idx := atomic.AddUint64(&resourceCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := ResourceFixture{
		ID:        fmt.Sprintf("desk-%03d", idx),
		MapID:     mapID,
		Name:      fmt.Sprintf("Desk %03d", idx),
		Type:      persistence.ResourceTypeDesk,
		Status:    persistence.ResourceStatusAvailable,
		Capacity:  0,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// NewMeetingRoomFixture returns a deterministic meeting room fixture with
// optional overrides.
func NewMeetingRoomFixture(mapID string, opts ...ResourceOption) ResourceFixture {
	idx := atomic.AddUint64(&resourceCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := ResourceFixture{
		ID:        fmt.Sprintf("room-%03d", idx),
		MapID:     mapID,
		Name:      fmt.Sprintf("Room %03d", idx),
		Type:      persistence.ResourceTypeMeetingRoom,
		Status:    persistence.ResourceStatusAvailable,
		Capacity:  int(4 + idx%4),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithResourceID overrides the generated resource ID.
func WithResourceID(id string) ResourceOption {
	return func(f *ResourceFixture) {
		f.ID = id
	}
}

// WithResourceName overrides the generated resource name.
func WithResourceName(name string) ResourceOption {
	return func(f *ResourceFixture) {
		f.Name = name
	}
}

// WithResourceStatus overrides the generated resource status.
func WithResourceStatus(status persistence.ResourceStatus) ResourceOption {
	return func(f *ResourceFixture) {
		f.Status = status
	}
}

// WithResourceCapacity overrides the generated resource capacity.
func WithResourceCapacity(capacity int) ResourceOption {
	return func(f *ResourceFixture) {
		f.Capacity = capacity
	}
}

// Persistence returns the fixture as a persistence.Resource value.
func (f ResourceFixture) Persistence() persistence.Resource {
	return persistence.Resource{
		ID:        f.ID,
		MapID:     f.MapID,
		Name:      f.Name,
		Type:      f.Type,
		Status:    f.Status,
		Capacity:  f.Capacity,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input returns the fixture as an application.ResourceInput.
func (f ResourceFixture) Input() application.ResourceInput {
	return application.ResourceInput{
		MapID:    f.MapID,
		Name:     f.Name,
		Type:     f.Type,
		Status:   f.Status,
		Capacity: f.Capacity,
	}
}

// ---------------------------- Booking fixtures ----------------------------

// BookingFixture represents a deterministic booking record.
type BookingFixture struct {
	ID            string
	ResourceID    string
	UserID        string
	Date          string
	Recurring     bool
	RecurringDays []string
	Slot          *persistence.TimeSlot
	CreatedAt     time.Time
}

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a deterministic booking fixture tied to the given
// resource and user with optional overrides. Without overrides the booking is
// a one-off desk style booking on ReferenceDate.
func NewBookingFixture(resourceID, userID string, opts ...BookingOption) BookingFixture {
	idx := atomic.AddUint64(&bookingCounter, 1)
	fixture := BookingFixture{
		ID:         fmt.Sprintf("booking-%03d", idx),
		ResourceID: resourceID,
		UserID:     userID,
		Date:       ReferenceDate(),
		CreatedAt:  referenceTime.Add(time.Duration(idx) * time.Second),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookingID overrides the generated booking ID.
func WithBookingID(id string) BookingOption {
	return func(f *BookingFixture) {
		f.ID = id
	}
}

// WithBookingDate overrides the booking date.
func WithBookingDate(date string) BookingOption {
	return func(f *BookingFixture) {
		f.Date = date
	}
}

// WithBookingSlot sets a meeting room time slot on the booking.
func WithBookingSlot(start, end string) BookingOption {
	return func(f *BookingFixture) {
		f.Slot = &persistence.TimeSlot{Start: start, End: end}
	}
}

// WithBookingRecurrence marks the booking as recurring on the given weekdays.
func WithBookingRecurrence(days ...string) BookingOption {
	return func(f *BookingFixture) {
		f.Recurring = true
		f.RecurringDays = days
	}
}

// WithBookingCreatedAt sets the created timestamp on the fixture.
func WithBookingCreatedAt(t time.Time) BookingOption {
	return func(f *BookingFixture) {
		f.CreatedAt = t
	}
}

// Persistence returns the fixture as a persistence.Booking value.
func (f BookingFixture) Persistence() persistence.Booking {
	var slot *persistence.TimeSlot
	if f.Slot != nil {
		copied := *f.Slot
		slot = &copied
	}
	return persistence.Booking{
		ID:            f.ID,
		ResourceID:    f.ResourceID,
		UserID:        f.UserID,
		Date:          f.Date,
		Recurring:     f.Recurring,
		RecurringDays: append([]string(nil), f.RecurringDays...),
		Slot:          slot,
		CreatedAt:     f.CreatedAt,
	}
}

// Input returns the fixture as an application.BookingInput.
func (f BookingFixture) Input() application.BookingInput {
	var slot *persistence.TimeSlot
	if f.Slot != nil {
		copied := *f.Slot
		slot = &copied
	}
	return application.BookingInput{
		ResourceID:    f.ResourceID,
		UserID:        f.UserID,
		Date:          f.Date,
		Recurring:     f.Recurring,
		RecurringDays: append([]string(nil), f.RecurringDays...),
		Slot:          slot,
	}
}
