package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/danielhalim/logbook/internal/runlog"
)

// Selectors are fixed to the portal's DOM; the site is not versioned.
const (
	selSignIn       = "button#btnLogin"
	selEmail        = "input#i0116"
	selPassword     = "input#i0118"
	selAdvance      = "input#idSIButton9"
	selStaySignedNo = "input#idBtn_Back"
	selSsoHandoff   = `a.button-orange[href*="/SSOToActivity"]`
	selAccountTile  = `//*[@id="tilesHolder"]/div[1]/div/div[1]/div/div[2]/div[1]`
	selLogBook      = "#btnLogBook"
	selMonthTab     = "#monthTab"
	selMonthLinks   = "#monthTab li a"
	selOverlay      = ".fancybox-overlay"
)

const (
	fillTimeoutMs    = 10_000
	handoffTimeoutMs = 20_000
	tileTimeoutMs    = 5_000
	overlayTimeoutMs = 5_000
	settleMs         = 500
)

// Options configures the browser-driving negotiator.
type Options struct {
	DashboardURL string
	Headless     bool
	SlowMoMs     int
}

// PlaywrightNegotiator drives a headless browser through the portal's
// Microsoft SSO flow. At most one browser is alive at a time: each
// Negotiate call tears down the previous browser before launching its
// own, and owns the new one until it returns.
type PlaywrightNegotiator struct {
	opts Options
	log  *runlog.Logger

	pw      *playwright.Playwright
	browser playwright.Browser
}

func NewPlaywrightNegotiator(opts Options, log *runlog.Logger) *PlaywrightNegotiator {
	if log == nil {
		log = runlog.Discard()
	}
	return &PlaywrightNegotiator{opts: opts, log: log}
}

// Close tears down any live browser and the playwright driver.
func (n *PlaywrightNegotiator) Close() error {
	n.closeBrowser()
	if n.pw != nil {
		err := n.pw.Stop()
		n.pw = nil
		return err
	}
	return nil
}

func (n *PlaywrightNegotiator) closeBrowser() {
	if n.browser == nil {
		return
	}
	n.log.Infof("closing previous browser instance")
	if err := n.browser.Close(); err != nil {
		n.log.Warnf("previous browser close failed: %v", err)
	}
	n.browser = nil
}

// Negotiate runs the full login flow and returns a fresh Session.
// Specific step failures surface as ErrLoginStepFailed,
// ErrSsoHandoffFailed or ErrNavigationFailed; anything else is wrapped
// in ErrNegotiationFailed.
func (n *PlaywrightNegotiator) Negotiate(ctx context.Context, email, password string) (*Session, error) {
	n.closeBrowser()

	if n.pw == nil {
		pw, err := playwright.Run()
		if err != nil {
			return nil, fmt.Errorf("%w: starting playwright: %v", ErrNegotiationFailed, err)
		}
		n.pw = pw
	}

	n.log.Infof("launching headless browser")
	browser, err := n.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(n.opts.Headless),
		SlowMo:   playwright.Float(float64(n.opts.SlowMoMs)),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: launching browser: %v", ErrNegotiationFailed, err)
	}
	n.browser = browser

	sess, err := n.drive(ctx, browser, email, password)

	n.closeBrowser()
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (n *PlaywrightNegotiator) drive(ctx context.Context, browser playwright.Browser, email, password string) (*Session, error) {
	bctx, err := browser.NewContext()
	if err != nil {
		return nil, fmt.Errorf("%w: browser context: %v", ErrNegotiationFailed, err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("%w: opening page: %v", ErrNegotiationFailed, err)
	}

	n.log.Infof("navigating to %s", n.opts.DashboardURL)
	if _, err := page.Goto(n.opts.DashboardURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return nil, fmt.Errorf("%w: dashboard load: %v", ErrNegotiationFailed, err)
	}

	n.log.Infof("triggering federated sign-in")
	if err := page.Click(selSignIn); err != nil {
		return nil, fmt.Errorf("%w: sign-in button: %v", ErrNegotiationFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNegotiationFailed, err)
	}

	// Provider pages: email then password, advancing with the same button.
	n.log.Infof("entering email")
	if err := page.Fill(selEmail, email, playwright.PageFillOptions{Timeout: playwright.Float(fillTimeoutMs)}); err != nil {
		return nil, fmt.Errorf("%w: email field: %v", ErrLoginStepFailed, err)
	}
	if err := page.Click(selAdvance); err != nil {
		return nil, fmt.Errorf("%w: advancing after email: %v", ErrLoginStepFailed, err)
	}
	n.log.Infof("entering password")
	if err := page.Fill(selPassword, password, playwright.PageFillOptions{Timeout: playwright.Float(fillTimeoutMs)}); err != nil {
		return nil, fmt.Errorf("%w: password field: %v", ErrLoginStepFailed, err)
	}
	if err := page.Click(selAdvance); err != nil {
		return nil, fmt.Errorf("%w: advancing after password: %v", ErrLoginStepFailed, err)
	}

	// "Stay signed in?" only sometimes appears.
	if err := page.Click(selStaySignedNo, playwright.PageClickOptions{Timeout: playwright.Float(tileTimeoutMs)}); err != nil {
		n.log.Infof("no stay-signed-in prompt")
	}

	if err := n.awaitHandoff(page); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNegotiationFailed, err)
	}

	n.log.Infof("selecting account tile")
	if _, err := page.WaitForSelector(selAccountTile, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(tileTimeoutMs),
	}); err != nil {
		return nil, fmt.Errorf("%w: account tile: %v", ErrNavigationFailed, err)
	}
	if err := page.Click(selAccountTile); err != nil {
		return nil, fmt.Errorf("%w: account tile click: %v", ErrNavigationFailed, err)
	}

	n.log.Infof("opening logbook")
	if _, err := page.WaitForSelector(selLogBook); err != nil {
		return nil, fmt.Errorf("%w: logbook button: %v", ErrNavigationFailed, err)
	}
	if err := page.Click(selLogBook); err != nil {
		return nil, fmt.Errorf("%w: logbook click: %v", ErrNavigationFailed, err)
	}

	months, err := n.collectMonthHeaders(page)
	if err != nil {
		return nil, err
	}
	if len(months) == 0 {
		n.log.Warnf("no month header IDs found; submissions will fail per entry")
	}

	cookies, err := bctx.Cookies()
	if err != nil {
		return nil, fmt.Errorf("%w: reading cookies: %v", ErrNegotiationFailed, err)
	}
	pairs := make([]string, 0, len(cookies))
	for _, c := range cookies {
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	n.log.Successf("session established (%d cookies, %d months)", len(cookies), len(months))

	return &Session{
		Cookie:       strings.Join(pairs, "; "),
		MonthHeaders: months,
	}, nil
}

// awaitHandoff waits for the "continue to application" control, retrying
// once via reload before giving up.
func (n *PlaywrightNegotiator) awaitHandoff(page playwright.Page) error {
	n.log.Infof("waiting for activity-apps handoff")
	for attempt := 0; attempt < 2; attempt++ {
		_, err := page.WaitForSelector(selSsoHandoff, playwright.PageWaitForSelectorOptions{
			State:   playwright.WaitForSelectorStateVisible,
			Timeout: playwright.Float(handoffTimeoutMs),
		})
		if err == nil {
			page.WaitForTimeout(settleMs)
			if err := page.Click(selSsoHandoff, playwright.PageClickOptions{Force: playwright.Bool(true)}); err != nil {
				return fmt.Errorf("%w: handoff click: %v", ErrSsoHandoffFailed, err)
			}
			return nil
		}
		if attempt == 0 {
			n.log.Warnf("handoff control not visible, reloading once")
			if _, rerr := page.Reload(); rerr != nil {
				return fmt.Errorf("%w: reload: %v", ErrSsoHandoffFailed, rerr)
			}
		}
	}
	return fmt.Errorf("%w: handoff control never appeared", ErrSsoHandoffFailed)
}

// collectMonthHeaders clicks through every month tab and extracts the
// header ID embedded in each tab's click handler.
func (n *PlaywrightNegotiator) collectMonthHeaders(page playwright.Page) (map[string]string, error) {
	n.log.Infof("waiting for month tabs")
	if _, err := page.WaitForSelector(selMonthTab); err != nil {
		return nil, fmt.Errorf("%w: month tabs: %v", ErrNavigationFailed, err)
	}
	// The loading overlay intercepts clicks until it hides.
	if _, err := page.WaitForSelector(selOverlay, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateHidden,
		Timeout: playwright.Float(overlayTimeoutMs),
	}); err != nil {
		n.log.Warnf("loading overlay still visible after %dms", overlayTimeoutMs)
	}

	elements, err := page.QuerySelectorAll(selMonthLinks)
	if err != nil {
		return nil, fmt.Errorf("%w: enumerating month tabs: %v", ErrNegotiationFailed, err)
	}
	n.log.Infof("found %d month tabs", len(elements))

	months := make(map[string]string, len(elements))
	for _, el := range elements {
		label, err := el.InnerText()
		if err != nil {
			return nil, fmt.Errorf("%w: month label: %v", ErrNegotiationFailed, err)
		}
		name := cleanMonthLabel(label)

		if err := el.Click(); err != nil {
			return nil, fmt.Errorf("%w: month tab %s: %v", ErrNegotiationFailed, name, err)
		}
		attr, err := el.GetAttribute("onclick")
		if err != nil {
			return nil, fmt.Errorf("%w: month tab %s onclick: %v", ErrNegotiationFailed, name, err)
		}
		if id := headerIDFromOnclick(attr); id != "" {
			months[name] = id
			n.log.Infof("mapped %s", name)
		}
	}
	return months, nil
}
