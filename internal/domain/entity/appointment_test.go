package entity

import "testing"

func TestAppointmentStatusTerminal(t *testing.T) {
	terminal := []AppointmentStatus{
		AppointmentStatusRejected,
		AppointmentStatusCompleted,
		AppointmentStatusCancelled,
		AppointmentStatusNoShow,
	}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}

	open := []AppointmentStatus{AppointmentStatusPending, AppointmentStatusApproved}
	for _, s := range open {
		if s.Terminal() {
			t.Errorf("expected %s not to be terminal", s)
		}
	}
}

func TestValidAppointmentType(t *testing.T) {
	for _, known := range AppointmentTypes {
		if !ValidAppointmentType(known) {
			t.Errorf("expected %q to be a valid type", known)
		}
	}
	if ValidAppointmentType("Dental Cleaning") {
		t.Error("expected unknown type to be rejected")
	}
	if ValidAppointmentType("") {
		t.Error("expected empty type to be rejected")
	}
}

func TestHomeCollectionRequested(t *testing.T) {
	a := &Appointment{}
	if a.HomeCollectionRequested() {
		t.Error("expected no request when home collection is absent")
	}

	a.HomeCollection = &HomeCollection{Requested: false}
	if a.HomeCollectionRequested() {
		t.Error("expected no request when requested flag is false")
	}

	a.HomeCollection.Requested = true
	if !a.HomeCollectionRequested() {
		t.Error("expected a request when requested flag is set")
	}
}
