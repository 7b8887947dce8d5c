package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jredh-dev/foodshare/config"
)

type harness struct {
	t   *testing.T
	reg *Registry
	app *App
	out *bytes.Buffer
	err *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Driver = config.DriverMemory

	h := &harness{t: t, reg: NewRegistry(), out: &bytes.Buffer{}, err: &bytes.Buffer{}}
	h.app = NewApp(cfg, nil, VersionInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-01"})
	h.app.In = strings.NewReader("")
	h.app.Out = h.out
	h.app.Err = h.err
	h.app.Now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local) }
	t.Cleanup(func() { h.app.Close() })
	return h
}

// run executes args and returns what was written to Out.
func (h *harness) run(args ...string) string {
	h.t.Helper()
	h.out.Reset()
	err := h.reg.Execute(context.Background(), h.app, args)
	require.NoError(h.t, err, "foodshare %s\nstderr: %s", strings.Join(args, " "), h.err.String())
	return h.out.String()
}

func (h *harness) runErr(args ...string) error {
	h.t.Helper()
	h.out.Reset()
	return h.reg.Execute(context.Background(), h.app, args)
}

var (
	donationCreated = regexp.MustCompile(`Donation (\S+) created`)
	requestCreated  = regexp.MustCompile(`Request (\S+) created`)
)

func capture(t *testing.T, re *regexp.Regexp, s string) string {
	t.Helper()
	m := re.FindStringSubmatch(s)
	require.Len(t, m, 2, "no match for %s in %q", re, s)
	return m[1]
}

func (h *harness) donate() string {
	out := h.run("donate", "-purpose", "Veg biryani for 20", "-location", "Ameerpet",
		"-phone", "98765 43210", "-expiry", "2026-03-01T20:00")
	assert.Contains(h.t, out, "(available)")
	return capture(h.t, donationCreated, out)
}

func TestDeliveryFlow(t *testing.T) {
	h := newHarness(t)

	donationID := h.donate()
	out := h.run("donations")
	assert.Contains(t, out, donationID)
	assert.Contains(t, out, "Veg biryani for 20")

	out = h.run("request", "-donation", donationID, "-type", "volunteer")
	assert.Contains(t, out, "(pending)")
	requestID := capture(t, requestCreated, out)

	// Claimed donations leave the default listing.
	assert.Contains(t, h.run("donations"), "No donations.")
	assert.Contains(t, h.run("donations", "-all"), "claimed")

	out = h.run("tasks")
	assert.Contains(t, out, requestID)
	assert.Contains(t, out, "Ameerpet")

	assert.Contains(t, h.run("assign", requestID), "assigned to volunteer-123")
	assert.Contains(t, h.run("tasks"), "No open tasks.")
	assert.Contains(t, h.run("pick", requestID), "picked")
	assert.Contains(t, h.run("deliver", requestID), "volunteer-123 now has 10 credits")

	assert.Contains(t, h.run("rate", requestID, "8"), "Rated volunteer-123 8/10")
	assert.Contains(t, h.run("rating"), "Average rating for volunteer-123: 8.0")
	assert.Contains(t, h.run("rating", "-all"), requestID)

	out = h.run("profile", "-upi", "john@okaxis")
	assert.Contains(t, out, "Profile saved.")
	assert.Contains(t, out, "john@okaxis")
	assert.Contains(t, out, "₹50")

	out = h.run("payouts")
	assert.Contains(t, out, "₹50")
	assert.Contains(t, out, "pending")

	out = h.run("payouts", "-pay", "volunteer-123")
	assert.Contains(t, out, "Payout volunteer-123 marked paid")
	assert.Contains(t, out, "paid")

	out = h.run("requests", "-status", "delivered")
	assert.Contains(t, out, requestID)

	out = h.run("stats")
	assert.Regexp(t, `Meals served\s+│ 1 `, out)
	assert.Regexp(t, `Credits\s+│ 10 `, out)
}

func TestPickupRequest(t *testing.T) {
	h := newHarness(t)
	donationID := h.donate()

	out := h.run("request", "-donation", donationID, "-type", "pickup", "-recipient", "r-9")
	assert.Contains(t, out, "(delivered)")
	assert.Contains(t, h.run("tasks"), "No open tasks.")
	assert.Contains(t, h.run("donations", "-all"), "delivered")
	assert.Contains(t, h.run("requests", "-recipient", "r-9"), "pickup")
}

func TestFlagsAfterArguments(t *testing.T) {
	h := newHarness(t)
	donationID := h.donate()
	requestID := capture(t, requestCreated, h.run("request", "-donation", donationID))

	assert.Contains(t, h.run("assign", requestID, "-volunteer", "volunteer-7"), "assigned to volunteer-7")
}

func TestCommandErrors(t *testing.T) {
	h := newHarness(t)

	err := h.runErr("assign")
	assert.ErrorIs(t, err, ErrUsage)

	err = h.runErr("rate", "x", "eight")
	assert.ErrorIs(t, err, ErrUsage)

	err = h.runErr("frobnicate")
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, err.Error(), "unknown command: frobnicate")

	err = h.runErr("donate", "-purpose", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	err = h.runErr("assign", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	assert.NoError(t, h.runErr("donate", "-h"))
	assert.Contains(t, h.err.String(), "FLAGS:")
}

func TestSponsors(t *testing.T) {
	h := newHarness(t)

	out := h.run("sponsors")
	assert.Less(t, strings.Index(out, "Tech Solutions"), strings.Index(out, "Green Foods Ltd"), "defaults keep their order")

	out = h.run("sponsor", "-first", "Ravi", "-last", "Kumar", "-phone", "9000000000",
		"-email", "ravi@example.in", "-location", "Hyderabad", "-amount", "60000")
	assert.Contains(t, out, "Thank you, Ravi!")

	out = h.run("sponsors")
	order := []string{"Community Foundation", "Green Foods Ltd", "Ravi Kumar", "Tech Solutions"}
	for i := 1; i < len(order); i++ {
		assert.Less(t, strings.Index(out, order[i-1]), strings.Index(out, order[i]), "%s before %s", order[i-1], order[i])
	}
	assert.NotContains(t, out, "Local Business")
}

func TestCalendar(t *testing.T) {
	h := newHarness(t)
	donationID := h.donate()

	out := h.run("calendar")
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "UID:"+donationID+"@foodshare")

	path := filepath.Join(t.TempDir(), "donations.ics")
	out = h.run("calendar", "-out", path, "-reminder", "30m")
	assert.Contains(t, out, "Wrote 1 event(s)")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "TRIGGER:-PT30M")
}

const dump = `{
  "donations": "[{\"id\":\"d1\",\"purpose\":\"Rotis\",\"location\":\"MG Road\",\"phone\":\"9876543210\",\"expiryTime\":\"2026-03-01T22:00\",\"target\":\"animal\",\"donorId\":\"donor-1\",\"status\":\"available\",\"createdAt\":\"2026-03-01T09:00:00.000Z\"}]",
  "volunteerProfile": "{\"upiId\":\"john@upi\",\"credits\":30}"
}`

func TestImport(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "dump.json")
	require.NoError(t, os.WriteFile(path, []byte(dump), 0o600))

	out := h.run("import", path)
	assert.Contains(t, out, "Imported batch")
	assert.Regexp(t, `donations\s+│ 1 `, out)

	assert.Contains(t, h.run("donations"), "Rotis")
	assert.Contains(t, h.run("profile"), "john@upi")

	h.app.In = strings.NewReader(dump)
	out = h.run("import", "-")
	assert.Regexp(t, `volunteerProfile\s+│ 1 `, out)
}

func TestHelpAndVersion(t *testing.T) {
	h := newHarness(t)

	out := h.run("help")
	for _, name := range []string{"donate", "assign", "payouts", "calendar", "version"} {
		assert.Contains(t, out, name)
	}

	out = h.run("help", "credits")
	assert.Contains(t, out, "deliver")
	assert.NotContains(t, out, "calendar")

	out = h.run("help", "rate")
	assert.Contains(t, out, "USAGE:")
	assert.Contains(t, out, "foodshare rate <request-id> <1-10>")

	assert.Contains(t, h.run("help", "zzz-nothing"), "No commands match")
	assert.Contains(t, h.run("--help"), "DONOR:")
	assert.Contains(t, h.run("version"), "foodshare 1.2.3")
}

func TestSearch(t *testing.T) {
	r := NewRegistry()

	names := func(cmds []*Command) []string {
		var out []string
		for _, c := range cmds {
			out = append(out, c.Name)
		}
		return out
	}

	tests := []struct {
		query string
		role  Role
		want  []string
	}{
		{"ics", RoleAny, []string{"calendar"}},
		{"UPI", RoleAny, []string{"profile", "payouts"}},
		{"", RoleSponsor, []string{"sponsor", "sponsors", "version", "help"}},
		{"rating", RoleRecipient, []string{"rate"}},
	}
	for _, tt := range tests {
		t.Run(tt.query+"/"+string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, names(r.Search(tt.query, tt.role)))
		})
	}
}

func TestTableWriter(t *testing.T) {
	tw := NewTableWriter("ID", "AMOUNT")
	tw.AddRow("a", "₹100")
	tw.AddRow("longer-id", "₹5")
	assert.Equal(t, 2, tw.Len())

	var buf bytes.Buffer
	tw.Print(&buf)
	want := "" +
		"┌───────────┬────────┐\n" +
		"│ ID        │ AMOUNT │\n" +
		"├───────────┼────────┤\n" +
		"│ a         │ ₹100   │\n" +
		"│ longer-id │ ₹5     │\n" +
		"└───────────┴────────┘\n"
	assert.Equal(t, want, buf.String())
}
