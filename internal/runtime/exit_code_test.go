// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"testing"
)

func TestExitCodeIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     ExitCode
		wantValid bool
	}{
		{name: "zero is valid", value: 0, wantValid: true},
		{name: "one is valid", value: 1, wantValid: true},
		{name: "127 is valid", value: 127, wantValid: true},
		{name: "255 is valid", value: 255, wantValid: true},
		{name: "negative is invalid", value: -1, wantValid: false},
		{name: "256 is invalid", value: 256, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			isValid, errs := tt.value.IsValid()
			if isValid != tt.wantValid {
				t.Errorf("ExitCode(%d).IsValid() = %v, want %v", tt.value, isValid, tt.wantValid)
			}
			if tt.wantValid {
				if len(errs) != 0 {
					t.Errorf("ExitCode(%d).IsValid() returned errors for valid value: %v", tt.value, errs)
				}
				return
			}
			if len(errs) == 0 {
				t.Fatal("ExitCode.IsValid() returned no errors for invalid value")
			}
			if !errors.Is(errs[0], ErrInvalidExitCode) {
				t.Errorf("error does not wrap ErrInvalidExitCode: %v", errs[0])
			}
		})
	}
}

func TestExitCodeIsSuccess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code ExitCode
		want bool
	}{
		{0, true},
		{1, false},
		{255, false},
	}

	for _, tt := range tests {
		if got := tt.code.IsSuccess(); got != tt.want {
			t.Errorf("ExitCode(%d).IsSuccess() = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestResultSuccess(t *testing.T) {
	t.Parallel()

	if !NewSuccessResult("ok").Success() {
		t.Error("NewSuccessResult().Success() = false, want true")
	}
	if NewExitCodeResult(2, "").Success() {
		t.Error("non-zero exit must not be a success")
	}
	if NewErrorResult(0, errors.New("spawn")).Success() {
		t.Error("a result carrying an error must not be a success")
	}
}
