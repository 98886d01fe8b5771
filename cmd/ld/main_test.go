package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"ledgerdesk/internal/derive"
	"ledgerdesk/internal/domain"
)

func TestRenderSchedule(t *testing.T) {
	entries, err := derive.Schedule(
		decimal.RequireFromString("1200"),
		decimal.RequireFromString("200"),
		3, domain.MethodStraightLine, 2)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	var buf bytes.Buffer
	renderSchedule(&buf, entries, 2)
	out := buf.String()
	for _, want := range []string{"333.33", "333.34", "200.00", "1200.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table output missing %q:\n%s", want, out)
		}
	}
}
