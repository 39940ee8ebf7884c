package service

import "errors"

var (
	// ErrInvalidInterval is returned when a booking end is not strictly
	// after its start.
	ErrInvalidInterval = errors.New("end date must be after start date")

	// ErrNotAvailable is returned when the item is not open for booking.
	ErrNotAvailable = errors.New("item is not available for booking")

	// ErrSelfBooking is returned when an owner tries to book their own
	// item.
	ErrSelfBooking = errors.New("cannot book own item")

	// ErrAlreadyApproved is returned when a decision is attempted on a
	// booking that has already been approved.
	ErrAlreadyApproved = errors.New("booking is already approved")

	// ErrUnsupportedState is returned for an unrecognized temporal state
	// filter.
	ErrUnsupportedState = errors.New("unsupported state filter")

	// ErrNotRented is returned when a user comments on an item without a
	// finished approved rental of it.
	ErrNotRented = errors.New("user has not rented this item")
)
