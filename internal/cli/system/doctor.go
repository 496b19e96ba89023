package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/guardian/internal/cli"
	"github.com/julianstephens/guardian/internal/keyring"
)

type DoctorCmd struct{}

type checkStatus int

const (
	checkOK checkStatus = iota
	checkWarn
	checkFail
	checkSkipped
)

type checkResult struct {
	status checkStatus
	detail string
}

func ok() checkResult { return checkResult{status: checkOK} }

func warn(detail string) checkResult { return checkResult{status: checkWarn, detail: detail} }

func fail(err error) checkResult { return checkResult{status: checkFail, detail: err.Error()} }

func skipped(why string) checkResult { return checkResult{status: checkSkipped, detail: why} }

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	checks := []struct {
		name string
		run  func(*cli.Context) checkResult
	}{
		{"Configuration", checkConfig},
		{"OS keyring", checkKeyring},
		{"Cache schema", checkCacheSchema},
		{"Auth token", checkToken},
		{"API reachable", checkAPI},
	}

	hasError := false
	for _, c := range checks {
		res := c.run(ctx)
		switch res.status {
		case checkOK:
			ctx.Printf("✓ %s: OK\n", c.name)
		case checkWarn:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %s\n", res.detail)
		case checkFail:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %s\n", res.detail)
			hasError = true
		case checkSkipped:
			ctx.Printf("⊘ %s: SKIPPED (%s)\n", c.name, res.detail)
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkConfig(ctx *cli.Context) checkResult {
	if err := ctx.Config.Validate(); err != nil {
		return fail(err)
	}
	return ok()
}

func checkKeyring(ctx *cli.Context) checkResult {
	if !keyring.IsAvailable() {
		return warn("the OS keyring is not available; set GUARDIAN_TOKEN to authenticate")
	}
	return ok()
}

func checkCacheSchema(ctx *cli.Context) checkResult {
	if ctx.Store == nil {
		return skipped("cache not opened")
	}
	current, latest, err := ctx.Store.SchemaVersion(ctx.RequestContext())
	if err != nil {
		return fail(fmt.Errorf("failed to read schema version: %w", err))
	}
	if current > latest {
		return fail(fmt.Errorf("cache schema version (%d) is newer than supported version (%d)", current, latest))
	}
	if current < latest {
		return fail(fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest))
	}
	return ok()
}

// checkToken only warns for opaque tokens; the server is the one that decides
func checkToken(ctx *cli.Context) checkResult {
	if ctx.Tokens == nil || ctx.Tokens.Token() == "" {
		return warn("not logged in; run 'guardian login'")
	}
	expiry, hasExpiry, err := cli.TokenExpiry(ctx.Tokens.Token())
	if err != nil {
		return warn("token is not a JWT; expiry can't be checked")
	}
	if !hasExpiry {
		return ok()
	}
	if expiry.Before(time.Now()) {
		return fail(errors.New("token expired " + humanize.Time(expiry) + "; run 'guardian login'"))
	}
	return ok()
}

func checkAPI(ctx *cli.Context) checkResult {
	if ctx.Client == nil {
		return skipped("no API client")
	}
	if err := ctx.Client.Health(ctx.RequestContext()); err != nil {
		return fail(fmt.Errorf("%s: %w", ctx.Client.BaseURL(), err))
	}
	return ok()
}
