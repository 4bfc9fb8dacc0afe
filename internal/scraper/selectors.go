package scraper

import "regexp"

// Site markup changes frequently and carries no contract, so element
// discovery is data-driven: ordered candidate lists evaluated first-match
// wins. New markup variants get a new table entry, not new control flow.

// loginURLs are tried in order; the first one that loads a usable surface
// wins. The feed URL is last since it needs an extra hop to the login form.
var loginURLs = []string{
	"https://www.tiktok.com/login/phone-or-email/email",
	"https://www.tiktok.com/login/phone-or-email/phone",
	"https://www.tiktok.com/login",
	"https://www.tiktok.com/foryou",
}

var usernameSelectors = []string{
	`input[name="email"]`,
	`input[name="username"]`,
	`input[type="text"]`,
	`input[placeholder*="Email"]`,
	`input[placeholder*="email"]`,
	`input[placeholder*="Phone"]`,
	`input[placeholder*="phone"]`,
	`input[data-testid*="email"]`,
	`input[data-testid*="username"]`,
}

var passwordSelectors = []string{
	`input[name="password"]`,
	`input[type="password"]`,
	`input[placeholder*="Password"]`,
	`input[placeholder*="password"]`,
	`input[data-testid*="password"]`,
}

var submitSelectors = []string{
	`button[type="submit"]`,
	`button[role="button"]`,
	`button[class*="login"]`,
	`button[class*="submit"]`,
	`button[data-testid*="login"]`,
	`button[data-testid*="submit"]`,
}

// altLoginXPaths locate the "use another login method" controls shown when
// the email form is hidden behind a method chooser. One click, then the
// field probing runs once more.
var altLoginXPaths = []string{
	`//button[contains(., 'Use phone / email') or contains(., 'Use phone or email') or contains(., 'Email / phone')]`,
	`//a[contains(., 'Use phone / email')]`,
	`//button[contains(., 'Log in with email')]`,
	`//button[contains(., 'Continue with email')]`,
}

// loginLinkSelector finds a login entry point when a non-login URL (the
// feed) loaded instead of a form.
const loginLinkSelector = `a[href*="login"], button[class*="login"]`

var (
	// captchaPattern marks verification walls in visible page text.
	// Terminal and never retried automatically.
	captchaPattern = regexp.MustCompile(`(?i)captcha|verify|verification|2fa|two-step`)

	// rejectionPattern marks credential-rejection feedback in page text.
	rejectionPattern = regexp.MustCompile(`(?i)incorrect|invalid|wrong|failed`)
)
