//go:build unit

package utils

import "testing"

func TestConvertMinutesToDuration(t *testing.T) {
	convertRequest := func(minutes int64, want string) func(t *testing.T) {
		return func(t *testing.T) {
			if got := ConvertMinutesToDuration(minutes); got != want {
				t.Fatalf("ConvertMinutesToDuration(%d) = %q, want %q", minutes, got, want)
			}
		}
	}

	t.Run("hours_and_minutes", convertRequest(125, "2h 5m"))
	t.Run("whole_hours", convertRequest(480, "8h"))
	t.Run("under_an_hour", convertRequest(45, "45m"))
	t.Run("zero", convertRequest(0, "0h"))
}

func TestFormatUSD(t *testing.T) {
	formatRequest := func(amount float64, want string) func(t *testing.T) {
		return func(t *testing.T) {
			if got := FormatUSD(amount); got != want {
				t.Fatalf("FormatUSD(%v) = %q, want %q", amount, got, want)
			}
		}
	}

	t.Run("thousand_separators", formatRequest(1234.5, "$1,234.50"))
	t.Run("millions", formatRequest(1234567.89, "$1,234,567.89"))
	t.Run("small_amount", formatRequest(9.99, "$9.99"))
	t.Run("rounds_half_cent_up", formatRequest(0.995, "$1.00"))
	t.Run("negative", formatRequest(-250.25, "-$250.25"))
	t.Run("zero", formatRequest(0, "$0.00"))
}
