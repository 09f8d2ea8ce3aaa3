package validator

import "testing"

func TestIsStrongPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Passw0rd!", true},
		{"aB3$efgh", true},
		{"short1A!", true},
		{"Sh0rt!", false},     // too short
		{"password1!", false}, // no upper case
		{"PASSWORD1!", false}, // no lower case
		{"Password!!", false}, // no digit
		{"Password12", false}, // no special character
		{"", false},
	}

	for _, tt := range tests {
		if got := IsStrongPassword(tt.password); got != tt.want {
			t.Errorf("IsStrongPassword(%q) = %v, want %v", tt.password, got, tt.want)
		}
	}
}

func TestHHMMTag(t *testing.T) {
	v := NewValidator()

	type form struct {
		Time string `validate:"hhmm"`
	}

	valid := []string{"00:00", "09:30", "13:45", "23:59"}
	for _, value := range valid {
		if err := v.Validate(form{Time: value}); err != nil {
			t.Errorf("expected %q to pass: %v", value, err)
		}
	}

	invalid := []string{"24:00", "9:30", "12:60", "noon", ""}
	for _, value := range invalid {
		if err := v.Validate(form{Time: value}); err == nil {
			t.Errorf("expected %q to fail", value)
		}
	}
}

func TestPhoneTag(t *testing.T) {
	v := NewValidator()

	type form struct {
		Phone string `validate:"phone"`
	}

	valid := []string{"+12345678901", "081234567890", "12345678"}
	for _, value := range valid {
		if err := v.Validate(form{Phone: value}); err != nil {
			t.Errorf("expected %q to pass: %v", value, err)
		}
	}

	invalid := []string{"1234567", "phone", "+12 345 678", ""}
	for _, value := range invalid {
		if err := v.Validate(form{Phone: value}); err == nil {
			t.Errorf("expected %q to fail", value)
		}
	}
}

func TestFormatValidationErrorsHidesCredentials(t *testing.T) {
	v := NewValidator()

	type form struct {
		Email    string `validate:"required,email"`
		Password string `validate:"strongpassword"`
	}

	err := v.Validate(form{Email: "not-an-email", Password: "weak"})
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	fields := v.FormatValidationErrors(err)
	if len(fields) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(fields))
	}

	for _, fe := range fields {
		if fe.Message == "" {
			t.Errorf("field %q has an empty message", fe.Field)
		}
		if fe.Field == "Password" && fe.Value != nil {
			t.Error("password value must not be echoed back")
		}
	}
}
