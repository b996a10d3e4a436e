package model

import "fmt"

// LaptopStatus is the lifecycle state of a laptop.
type LaptopStatus string

const (
	LaptopAvailable LaptopStatus = "Available"
	LaptopReserved  LaptopStatus = "Reserved"
	LaptopAssigned  LaptopStatus = "Assigned"
	LaptopRetired   LaptopStatus = "Retired"
)

// Valid reports whether s is one of the known laptop states.
func (s LaptopStatus) Valid() bool {
	switch s {
	case LaptopAvailable, LaptopReserved, LaptopAssigned, LaptopRetired:
		return true
	}
	return false
}

// ParseLaptopStatus converts a raw string into a LaptopStatus.
func ParseLaptopStatus(raw string) (LaptopStatus, error) {
	s := LaptopStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown laptop status %q", raw)
	}
	return s, nil
}

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationReserved  ReservationStatus = "Reserved"
	ReservationFulfilled ReservationStatus = "Fulfilled"
	ReservationCancelled ReservationStatus = "Cancelled"
)

// Valid reports whether s is one of the known reservation states.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationReserved, ReservationFulfilled, ReservationCancelled:
		return true
	}
	return false
}

// Open reports whether the reservation still holds its laptop.
func (s ReservationStatus) Open() bool { return s == ReservationReserved }

// ParseReservationStatus converts a raw string into a ReservationStatus.
func ParseReservationStatus(raw string) (ReservationStatus, error) {
	s := ReservationStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown reservation status %q", raw)
	}
	return s, nil
}

// AssignmentStatus is the lifecycle state of an assignment.
type AssignmentStatus string

const (
	AssignmentActive    AssignmentStatus = "Active"
	AssignmentCompleted AssignmentStatus = "Completed"
)

// Valid reports whether s is one of the known assignment states.
func (s AssignmentStatus) Valid() bool {
	return s == AssignmentActive || s == AssignmentCompleted
}

// Open reports whether the assignment still holds its laptop.
func (s AssignmentStatus) Open() bool { return s == AssignmentActive }

// ParseAssignmentStatus converts a raw string into an AssignmentStatus.
func ParseAssignmentStatus(raw string) (AssignmentStatus, error) {
	s := AssignmentStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown assignment status %q", raw)
	}
	return s, nil
}
