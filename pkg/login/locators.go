package login

// XPath heuristics for a login page whose markup is not known in advance.
const (
	UsernameXPath    = `//input[@type='text' or @type='email' or contains(@placeholder,'Username') or contains(@placeholder,'Email')]`
	PasswordXPath    = `//input[@type='password']`
	LoginButtonXPath = `//*[contains(translate(text(),'LOGIN','login'),'login')] | //input[@type='submit']`
	DashboardXPath   = `//h1[contains(text(),'Dashboard')]`
	ErrorBannerXPath = `//div[contains(@class,'error') or contains(@class,'alert')]`
)
