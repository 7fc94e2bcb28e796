package validate

// A large but non-exhaustive list of names users should not be able to
// register with. Sites that mint email addresses, subdomains, or profile
// URLs from usernames would otherwise hand out identities with special
// meaning. Credit for the basic idea and most of the list goes to Geoffrey
// Thomas: https://ldpreload.com/blog/names-to-reserve

var specialHostnames = []string{
	"autoconfig",    // Thunderbird autoconfig
	"autodiscover",  // MS Outlook/Exchange autoconfig
	"broadcasthost", // Network broadcast hostname
	"isatap",        // IPv6 tunnel autodiscovery
	"localdomain",   // Loopback
	"localhost",     // Loopback
	"wpad",          // Proxy autodiscovery
}

var protocolHostnames = []string{
	"ftp",
	"imap",
	"mail",
	"news",
	"pop",
	"pop3",
	"smtp",
	"usenet",
	"uucp",
	"webmail",
	"www",
}

// Email addresses known to be used by certificate authorities during
// domain-control verification.
var caAddresses = []string{
	"admin",
	"administrator",
	"hostmaster",
	"info",
	"is",
	"it",
	"mis",
	"postmaster",
	"root",
	"ssladmin",
	"ssladministrator",
	"sslwebmaster",
	"sysadmin",
	"webmaster",
}

// RFC 2142 mailbox names not already covered.
var rfc2142 = []string{
	"abuse",
	"marketing",
	"noc",
	"sales",
	"security",
	"support",
}

var noreplyAddresses = []string{
	"mailer-daemon",
	"nobody",
	"noreply",
	"no-reply",
}

var sensitiveFilenames = []string{
	"clientaccesspolicy.xml", // Silverlight cross-domain policy
	"crossdomain.xml",        // Flash cross-domain policy
	"favicon.ico",
	"humans.txt",
	"keybase.txt",
	"robots.txt",
	".htaccess",
	".htpasswd",
}

var otherSensitiveNames = []string{
	"account",
	"accounts",
	"auth",
	"authorize",
	"blog",
	"buy",
	"cart",
	"clients",
	"contact",
	"contactus",
	"contact-us",
	"copyright",
	"dashboard",
	"doc",
	"docs",
	"download",
	"downloads",
	"enquiry",
	"faq",
	"help",
	"inquiry",
	"license",
	"login",
	"logout",
	"me",
	"myaccount",
	"oauth",
	"pay",
	"payment",
	"payments",
	"plans",
	"portfolio",
	"preferences",
	"pricing",
	"privacy",
	"profile",
	"register",
	"secure",
	"settings",
	"signin",
	"signup",
	"ssl",
	"status",
	"store",
	"subscribe",
	"terms",
	"tos",
	"user",
	"users",
	"weblog",
	"work",
}

// DefaultReservedNames aggregates every reserved-name category. Call sites
// can build their own set instead when they need to loosen or extend it.
func DefaultReservedNames() []string {
	groups := [][]string{
		specialHostnames,
		protocolHostnames,
		caAddresses,
		rfc2142,
		noreplyAddresses,
		sensitiveFilenames,
		otherSensitiveNames,
	}

	var names []string
	for _, group := range groups {
		names = append(names, group...)
	}
	return names
}
