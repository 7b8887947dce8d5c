package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jredh-dev/foodshare/internal/ical"
	"github.com/jredh-dev/foodshare/internal/kv"
	"github.com/jredh-dev/foodshare/internal/lifecycle"
	"github.com/jredh-dev/foodshare/internal/store"
	"github.com/jredh-dev/foodshare/pkg/models"
)

func defaultCommands(r *Registry) []*Command {
	return []*Command{
		// Donor
		{
			Name:        "donate",
			Description: "Post surplus food",
			Usage:       "foodshare donate -purpose <text> -location <text> -phone <number> -expiry <time> [-target human|animal]",
			Examples: []string{
				`foodshare donate -purpose "Veg biryani for 20" -location Ameerpet -phone 9876543210 -expiry 2026-03-01T20:00`,
				`foodshare donate -purpose "Leftover rotis" -location "MG Road" -phone 9876543210 -expiry "2026-03-01 22:00" -target animal`,
			},
			Role:     RoleDonor,
			Keywords: []string{"donation", "create", "post", "give", "food"},
			Run:      runDonate,
		},
		{
			Name:        "donations",
			Description: "List donations",
			Usage:       "foodshare donations [-all] [-donor id]",
			Examples:    []string{"foodshare donations", "foodshare donations -donor current-donor"},
			Role:        RoleDonor,
			Keywords:    []string{"list", "available", "browse", "food"},
			Run:         runDonations,
		},

		// Recipient
		{
			Name:        "request",
			Description: "Request a donation for pickup or volunteer delivery",
			Usage:       "foodshare request -donation <id> [-type pickup|volunteer] [-recipient id]",
			Examples:    []string{"foodshare request -donation 01HV... -type volunteer"},
			Role:        RoleRecipient,
			Keywords:    []string{"claim", "need", "pickup", "delivery"},
			Run:         runRequest,
		},
		{
			Name:        "requests",
			Description: "List requests",
			Usage:       "foodshare requests [-recipient id] [-volunteer id] [-donation id] [-type t] [-status s]",
			Examples:    []string{"foodshare requests -recipient current-recipient"},
			Role:        RoleRecipient,
			Keywords:    []string{"list", "claims", "history"},
			Run:         runRequests,
		},
		{
			Name:        "rate",
			Description: "Rate the volunteer who delivered a request (1-10)",
			Usage:       "foodshare rate <request-id> <1-10> [-volunteer id]",
			Examples:    []string{"foodshare rate 01HV... 8"},
			Role:        RoleRecipient,
			Keywords:    []string{"rating", "score", "feedback", "review"},
			Run:         runRate,
		},

		// Volunteer
		{
			Name:        "tasks",
			Description: "List delivery requests waiting for a volunteer",
			Usage:       "foodshare tasks",
			Role:        RoleVolunteer,
			Keywords:    []string{"open", "pending", "available", "work", "deliveries"},
			Run:         runTasks,
		},
		{
			Name:        "assign",
			Description: "Take a pending delivery",
			Usage:       "foodshare assign <request-id> [-volunteer id]",
			Examples:    []string{"foodshare assign 01HV...", "foodshare assign 01HV... -volunteer volunteer-7"},
			Role:        RoleVolunteer,
			Keywords:    []string{"accept", "take", "claim", "task"},
			Run:         runAssign,
		},
		{
			Name:        "pick",
			Description: "Mark a delivery as collected from the donor",
			Usage:       "foodshare pick <request-id>",
			Role:        RoleVolunteer,
			Keywords:    []string{"collect", "picked", "pickup"},
			Run:         runPick,
		},
		{
			Name:        "deliver",
			Description: "Mark a delivery as completed and earn credits",
			Usage:       "foodshare deliver <request-id>",
			Role:        RoleVolunteer,
			Keywords:    []string{"complete", "done", "delivered", "credits"},
			Run:         runDeliver,
		},
		{
			Name:        "rating",
			Description: "Show a volunteer's average rating",
			Usage:       "foodshare rating [-volunteer id] [-all]",
			Examples:    []string{"foodshare rating", "foodshare rating -all"},
			Role:        RoleVolunteer,
			Keywords:    []string{"average", "score", "ratings", "feedback"},
			Run:         runRating,
		},
		{
			Name:        "profile",
			Description: "Show or update a volunteer's payout profile",
			Usage:       "foodshare profile [-volunteer id] [-upi name@bank] [-name text]",
			Examples:    []string{"foodshare profile", "foodshare profile -upi john@okaxis -name \"John D\""},
			Role:        RoleVolunteer,
			Keywords:    []string{"upi", "credits", "account", "payment"},
			Run:         runProfile,
		},

		// Sponsor
		{
			Name:        "sponsor",
			Description: "Submit a sponsorship",
			Usage:       "foodshare sponsor -first <name> -last <name> -phone <n> -email <e> -location <l> -amount <rupees> [-screenshot ref]",
			Examples:    []string{"foodshare sponsor -first Ravi -last Kumar -phone 9000000000 -email ravi@example.in -location Hyderabad -amount 60000"},
			Role:        RoleSponsor,
			Keywords:    []string{"fund", "donate money", "support", "contribute"},
			Run:         runSponsor,
		},
		{
			Name:        "sponsors",
			Description: "Show the top sponsors",
			Usage:       "foodshare sponsors",
			Role:        RoleSponsor,
			Keywords:    []string{"top", "leaderboard", "ranking", "funders"},
			Run:         runSponsors,
		},

		// Admin
		{
			Name:        "payouts",
			Description: "List volunteer payouts, optionally marking one paid",
			Usage:       "foodshare payouts [-pay volunteer-id]",
			Examples:    []string{"foodshare payouts", "foodshare payouts -pay volunteer-123"},
			Role:        RoleAdmin,
			Keywords:    []string{"pay", "money", "credits", "upi", "rupees"},
			Run:         runPayouts,
		},
		{
			Name:        "stats",
			Description: "Show overall counters",
			Usage:       "foodshare stats",
			Role:        RoleAdmin,
			Keywords:    []string{"dashboard", "summary", "meals", "totals"},
			Run:         runStats,
		},
		{
			Name:        "calendar",
			Description: "Export available donations as an iCalendar file",
			Usage:       "foodshare calendar [-out file.ics] [-all] [-reminder 1h]",
			Examples:    []string{"foodshare calendar -out donations.ics"},
			Role:        RoleAdmin,
			Keywords:    []string{"ical", "ics", "expiry", "reminder", "export"},
			Run:         runCalendar,
		},
		{
			Name:        "import",
			Description: "Import a browser localStorage export",
			Usage:       "foodshare import <file.json | ->",
			Examples:    []string{"foodshare import localstorage.json", "cat dump.json | foodshare import -"},
			Role:        RoleAdmin,
			Keywords:    []string{"load", "migrate", "browser", "localstorage", "restore"},
			Run:         runImport,
		},

		// General
		{
			Name:        "version",
			Description: "Show version information",
			Usage:       "foodshare version",
			Keywords:    []string{"build", "commit"},
			Run:         runVersion,
		},
		{
			Name:        "help",
			Description: "List commands, or search them by keyword",
			Usage:       "foodshare help [word] [-role donor|recipient|volunteer|sponsor|admin]",
			Examples:    []string{"foodshare help", "foodshare help credits", "foodshare help -role volunteer"},
			Keywords:    []string{"usage", "search", "commands"},
			Run: func(ctx context.Context, app *App, args []string) error {
				return runHelp(r, app, args)
			},
		},
	}
}

// parse parses flags that may appear before, between or after positional
// arguments and returns the positionals.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return pos, nil
		}
		pos = append(pos, rest[0])
		args = rest[1:]
	}
}

func exactArgs(cmd string, pos []string, n int, what string) error {
	if len(pos) != n {
		return fmt.Errorf("%w: %s needs %s", ErrUsage, cmd, what)
	}
	return nil
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

func runDonate(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet(app, "donate")
	var in lifecycle.DonationInput
	var target string
	fs.StringVar(&in.Purpose, "purpose", "", "what the food is and how much")
	fs.StringVar(&in.Location, "location", "", "pickup location")
	fs.StringVar(&in.Phone, "phone", "", "contact phone number")
	fs.StringVar(&in.ExpiryTime, "expiry", "", "best-before time, e.g. 2026-03-01T20:00")
	fs.StringVar(&target, "target", string(models.TargetHuman), "who the food is for: human or animal")
	fs.StringVar(&in.DonorID, "donor", "current-donor", "donor id")
	fs.StringVar(&in.FoodImage, "image", "", "image reference or data URL")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	in.Target = models.Target(target)

	svc, err := app.Service(ctx)
	if err != nil {
		return err
	}
	d, err := svc.CreateDonation(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "Donation %s created (%s)\n", d.ID, d.Status)
	return nil
}

func runDonations(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet(app, "donations")
	all := fs.Bool("all", false, "include claimed and delivered donations")
	donor := fs.String("donor", "", "only this donor's donations (any status)")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	svc, err := app.Service(ctx)
	if err != nil {
		return err
	}
	var list []models.Donation
	switch {
	case *donor != "":
		list, err = svc.DonorDonations(ctx, *donor)
	case *all:
		list, err = svc.Donations(ctx)
	default:
		list, err = svc.ListAvailable(ctx)
	}
	if err != nil {
		return err
	}

	if len(list) == 0 {
		fmt.Fprintln(app.Out, "No donations.")
		return nil
	}
	now := app.now()
	t := NewTableWriter("ID", "PURPOSE", "LOCATION", "FOR", "EXPIRES", "STATUS")
	for _, d := range list {
		status := string(d.Status)
		if d.Status == models.DonationAvailable && d.Expired(now) {
			status += " (expired)"
		}
		t.AddRow(d.ID, d.Purpose, d.Location, string(d.Target), d.ExpiryTime, status)
	}
	t.Print(app.Out)
	return nil
}

func runRequest(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet(app, "request")
	var in lifecycle.RequestInput
	var typ string
	fs.StringVar(&in.DonationID, "donation", "", "donation id")
	fs.StringVar(&in.RecipientID, "recipient", "current-recipient", "recipient id")
	fs.StringVar(&typ, "type", string(models.RequestVolunteer), "pickup or volunteer")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	in.Type = models.RequestType(typ)

	svc, err := app.Service(ctx)
	if err != nil {
		return err
	}
	r, err := svc.CreateRequest(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "Request %s created (%s)\n", r.ID, r.Status)
	return nil
}

func runRequests(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet(app, "requests")
	var f store.RequestFilter
	var typ, status string
	fs.StringVar(&f.RecipientID, "recipient", "", "recipient id")
	fs.StringVar(&f.VolunteerID, "volunteer", "", "volunteer id")
	fs.StringVar(&f.DonationID, "donation", "", "donation id")
	fs.StringVar(&typ, "type", "", "pickup or volunteer")
	fs.StringVar(&status, "status", "", "pending, assigned, picked or delivered")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	f.Type = models.RequestType(typ)
	f.Status = models.RequestStatus(status)

	svc, err := app.Service(ctx)
	if err != nil {
		return err
	}
	list, err := svc.Requests(ctx, f)
	if err != nil {
		return err
	}
	printRequests(app.Out, list)
	return nil
}

func printRequests(w io.Writer, list []models.Request) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No requests.")
		return
	}
	t := NewTableWriter("ID", "DONATION", "TYPE", "STATUS", "RECIPIENT", "VOLUNTEER", "CREATED")
	for _, r := range list {
		t.AddRow(r.ID, r.DonationID, string(r.Type), string(r.Status), r.RecipientID, r.VolunteerID, fmtTime(r.CreatedAt))
	}
	t.Print(w)
}

func runRate(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet(app, "rate")
	volunteer := fs.String("volunteer", "", "volunteer id (defaults to the request's volunteer)")
	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := exactArgs("rate", pos, 2, "a request id and a rating"); err != nil {
		return err
	}
	value, err := strconv.Atoi(pos[1])
	if err != nil {
		return fmt.Errorf("%w: rating must be a whole number, got %q", ErrUsage, pos[1])
	}

	svc, err := app.Service(ctx)
	if err != nil {
		return err
	}
	rt, err := svc.Rate(ctx, pos[0], *volunteer, value)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "Rated %s %d/%d\n", rt.VolunteerID, rt.Rating, models.MaxRating)
	return nil
}

func runTasks(ctx context.Context, app *App, args []string) error {
	if _, err := parse(newFlagSet(app, "tasks"), args); err != nil {
		return err
	}

	svc, err := app.Service(ctx)
	if err != nil {
		return err
	}
	tasks, err := svc.OpenTasks(ctx)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintln(app.Out, "No open tasks.")
		return nil
	}

	t := NewTableWriter("REQUEST", "PURPOSE", "LOCATION", "PHONE", "EXPIRES", "RECIPIENT")
	for _, r := range tasks {
		d, err := svc.Donation(ctx, r.DonationID)
		if err != nil {
			return err
		}
		t.AddRow(r.ID, d.Purpose, d.Location, d.Phone, d.ExpiryTime, r.RecipientID)
	}
	t.Print(app.Out)
	return nil
}

func runAssign(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet(app, "assign")
	volunteer := fs.String("volunteer", app.Config.Lifecycle.DefaultVolunteerID, "volunteer id")
	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := exactArgs("assign", pos, 1, "a request id"); err != nil {
		return err
	}

	svc, err := app.Service(ctx)
	if err != nil {
		return err
	}
	r, err := svc.Assign(ctx, pos[0], *volunteer)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "Request %s assigned to %s\n", r.ID, r.VolunteerID)
	return nil
}

func runPick(ctx context.Context, app *App, args []string) error {
	pos, err := parse(newFlagSet(app, "pick"), args)
	if err != nil {
		return err
	}
	if err := exactArgs("pick", pos, 1, "a request id"); err != nil {
		return err
	}

	svc, err := app.Service(ctx)
	if err != nil {
		return err
	}
	r, err := svc.Pick(ctx, pos[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "Request %s picked\n", r.ID)
	return nil
}

func runDeliver(ctx context.Context, app *App, args []string) error {
	pos, err := parse(newFlagSet(app, "deliver"), args)
	if err != nil {
		return err
	}
	if err := exactArgs("deliver", pos, 1, "a request id"); err != nil {
		return err
	}

	svc, err := app.Service(ctx)
	if err != nil {
		return err
	}
	d, err := svc.Deliver(ctx, pos[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "Request %s delivered; %s now has %d credits\n",
		d.Request.ID, d.Profile.VolunteerID, d.Profile.Credits)
	return nil
}

func runRating(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet(app, "rating")
	volunteer := fs.String("volunteer", app.Config.Lifecycle.DefaultVolunteerID, "volunteer id")
	all := fs.Bool("all", false, "list every rating")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	svc, err := app.Service(ctx)
	if err != nil {
		return err
	}

	if *all {
		ratings, err := svc.Ratings(ctx)
		if err != nil {
			return err
		}
		if len(ratings) == 0 {
			fmt.Fprintln(app.Out, "No ratings yet.")
			return nil
		}
		t := NewTableWriter("VOLUNTEER", "REQUEST", "RATING", "DATE")
		for _, r := range ratings {
			t.AddRow(r.VolunteerID, r.RequestID, fmt.Sprintf("%d/%d", r.Rating, models.MaxRating), fmtTime(r.CreatedAt))
		}
		t.Print(app.Out)
		return nil
	}

	avg, ok, err := svc.AverageRating(ctx, *volunteer)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(app.Out, "%s has no ratings yet.\n", *volunteer)
		return nil
	}
	fmt.Fprintf(app.Out, "Average rating for %s: %.1f\n", *volunteer, avg)
	return nil
}

func runProfile(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet(app, "profile")
	volunteer := fs.String("volunteer", app.Config.Lifecycle.DefaultVolunteerID, "volunteer id")
	upi := fs.String("upi", "", "new UPI id")
	name := fs.String("name", "", "new display name")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	svc, err := app.Service(ctx)
	if err != nil {
		return err
	}
	p, err := svc.Profile(ctx, *volunteer)
	if err != nil {
		return err
	}

	if *upi != "" || *name != "" {
		in := lifecycle.ProfileInput{VolunteerID: *volunteer, Name: *name, UPIID: *upi}
		if in.UPIID == "" {
			in.UPIID = p.UPIID
		}
		if p, err = svc.SaveProfile(ctx, in); err != nil {
			return err
		}
		fmt.Fprintln(app.Out, "Profile saved.")
	}

	avg, ok, err := svc.AverageRating(ctx, *volunteer)
	if err != nil {
		return err
	}
	rating := "none"
	if ok {
		rating = fmt.Sprintf("%.1f", avg)
	}

	t := NewTableWriter("FIELD", "VALUE")
	t.AddRow("Volunteer", p.VolunteerID)
	t.AddRow("Name", p.Name)
	t.AddRow("UPI", p.UPIID)
	t.AddRow("Credits", strconv.Itoa(p.Credits))
	t.AddRow("Worth", fmt.Sprintf("₹%d", p.Credits*svc.Economics().RupeesPerCredit))
	t.AddRow("Average rating", rating)
	t.Print(app.Out)
	return nil
}

func runSponsor(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet(app, "sponsor")
	var in lifecycle.SponsorInput
	fs.StringVar(&in.FirstName, "first", "", "first name")
	fs.StringVar(&in.LastName, "last", "", "last name")
	fs.StringVar(&in.Phone, "phone", "", "phone number")
	fs.StringVar(&in.Email, "email", "", "email address")
	fs.StringVar(&in.Location, "location", "", "city or area")
	fs.StringVar(&in.Amount, "amount", "", "amount in rupees")
	fs.StringVar(&in.Screenshot, "screenshot", "", "payment screenshot reference")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	svc, err := app.Service(ctx)
	if err != nil {
		return err
	}
	sp, err := svc.CreateSponsor(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "Thank you, %s! Sponsorship %s recorded.\n", sp.FirstName, sp.ID)
	return nil
}

func runSponsors(ctx context.Context, app *App, args []string) error {
	if _, err := parse(newFlagSet(app, "sponsors"), args); err != nil {
		return err
	}

	svc, err := app.Service(ctx)
	if err != nil {
		return err
	}
	ranked, err := svc.RankSponsors(ctx)
	if err != nil {
		return err
	}
	t := NewTableWriter("#", "SPONSOR", "AMOUNT")
	for i, s := range ranked {
		t.AddRow(strconv.Itoa(i+1), strings.TrimSpace(s.FirstName+" "+s.LastName), fmt.Sprintf("₹%d", lifecycle.ParseAmount(s.Amount)))
	}
	t.Print(app.Out)
	return nil
}

func runPayouts(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet(app, "payouts")
	pay := fs.String("pay", "", "mark this payout as paid")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	svc, err := app.Service(ctx)
	if err != nil {
		return err
	}
	if *pay != "" {
		p, err := svc.MarkPaid(ctx, *pay)
		if err != nil {
			return err
		}
		fmt.Fprintf(app.Out, "Payout %s marked paid (ref %s)\n", p.ID, p.Reference)
	}

	payouts, err := svc.Payouts(ctx)
	if err != nil {
		return err
	}
	if len(payouts) == 0 {
		fmt.Fprintln(app.Out, "No volunteer profiles yet.")
		return nil
	}
	t := NewTableWriter("ID", "VOLUNTEER", "UPI", "CREDITS", "AMOUNT", "STATUS")
	for _, p := range payouts {
		t.AddRow(p.ID, p.VolunteerName, p.UPIID, strconv.Itoa(p.Credits), fmt.Sprintf("₹%d", p.Amount), string(p.Status))
	}
	t.Print(app.Out)
	return nil
}

func runStats(ctx context.Context, app *App, args []string) error {
	if _, err := parse(newFlagSet(app, "stats"), args); err != nil {
		return err
	}

	svc, err := app.Service(ctx)
	if err != nil {
		return err
	}
	st, err := svc.Stats(ctx)
	if err != nil {
		return err
	}
	t := NewTableWriter("METRIC", "VALUE")
	t.AddRow("Donations", strconv.Itoa(st.Donations))
	t.AddRow("Meals served", strconv.Itoa(st.MealsServed))
	t.AddRow("Sponsors", strconv.Itoa(st.Sponsors))
	t.AddRow("Volunteers", strconv.Itoa(st.Volunteers))
	t.AddRow("Credits", strconv.Itoa(st.TotalCredits))
	t.Print(app.Out)
	return nil
}

func runCalendar(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet(app, "calendar")
	out := fs.String("out", "", "write to this file instead of stdout")
	all := fs.Bool("all", false, "include claimed and delivered donations")
	reminder := fs.Duration("reminder", time.Hour, "alarm lead time before expiry")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	svc, err := app.Service(ctx)
	if err != nil {
		return err
	}
	var list []models.Donation
	if *all {
		list, err = svc.Donations(ctx)
	} else {
		list, err = svc.ListAvailable(ctx)
	}
	if err != nil {
		return err
	}

	w := app.Out
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create %s: %w", *out, err)
		}
		defer f.Close()
		w = f
	}

	cal := ical.Calendar{
		Name:        "foodshare donations",
		Description: "Surplus food waiting for pickup",
		Refresh:     time.Hour,
		Reminder:    *reminder,
	}
	skipped, err := ical.Write(w, cal, list, app.now())
	if err != nil {
		return err
	}
	if skipped > 0 {
		fmt.Fprintf(app.Err, "Skipped %d donation(s) with an unreadable expiry time.\n", skipped)
	}
	if *out != "" {
		fmt.Fprintf(app.Out, "Wrote %d event(s) to %s\n", len(list)-skipped, *out)
	}
	return nil
}

func runImport(ctx context.Context, app *App, args []string) error {
	pos, err := parse(newFlagSet(app, "import"), args)
	if err != nil {
		return err
	}
	if err := exactArgs("import", pos, 1, "a file name or - for stdin"); err != nil {
		return err
	}

	r := app.In
	if pos[0] != "-" {
		f, err := os.Open(pos[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", pos[0], err)
		}
		defer f.Close()
		r = f
	}

	dump, err := kv.ParseDump(r, app.Config.Lifecycle.DefaultVolunteerID)
	if err != nil {
		return err
	}
	st, err := app.Store(ctx)
	if err != nil {
		return err
	}
	res, err := kv.Import(ctx, st, dump)
	if err != nil {
		return err
	}
	if app.Logger != nil {
		app.Logger.Info("import finished", "batch_id", res.BatchID,
			"donations", res.Donations, "requests", res.Requests, "ratings", res.Ratings,
			"profiles", res.Profiles, "sponsors", res.Sponsors)
	}

	fmt.Fprintf(app.Out, "Imported batch %s\n", res.BatchID)
	t := NewTableWriter("COLLECTION", "RECORDS")
	t.AddRow("donations", strconv.Itoa(res.Donations))
	t.AddRow("requests", strconv.Itoa(res.Requests))
	t.AddRow("volunteerRatings", strconv.Itoa(res.Ratings))
	t.AddRow("volunteerProfile", strconv.Itoa(res.Profiles))
	t.AddRow("sponsors", strconv.Itoa(res.Sponsors))
	t.Print(app.Out)
	return nil
}

func runVersion(_ context.Context, app *App, _ []string) error {
	fmt.Fprintf(app.Out, "foodshare %s\n", app.Version.Version)
	fmt.Fprintf(app.Out, "Commit: %s\n", app.Version.Commit)
	fmt.Fprintf(app.Out, "Built: %s\n", app.Version.Date)
	return nil
}

func runHelp(r *Registry, app *App, args []string) error {
	fs := newFlagSet(app, "help")
	role := fs.String("role", "", "only commands for this role")
	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	query := strings.Join(pos, " ")

	// An exact command name shows that command's usage.
	if cmd, ok := r.Lookup(query); ok {
		cmd.PrintUsage(app.Out)
		return nil
	}

	found := r.Search(query, Role(*role))
	if len(found) == 0 {
		fmt.Fprintf(app.Out, "No commands match %q.\n", query)
		return nil
	}
	r.PrintHelp(app.Out, found)
	return nil
}
