package model

// Vulnerability type vocabulary accepted by the document store.
const (
	TypeWeakPasswords         = "Weak Passwords"
	TypeOutdatedSoftware      = "Outdated Software"
	TypeSQLInjection          = "SQL Injection"
	TypeXSS                   = "XSS"
	TypeInsecureConfiguration = "Insecure Configuration"
	TypeUnauthorizedAccess    = "Unauthorized Access"
	TypeSensitiveDataExposure = "Sensitive Data Exposure"
	TypeUnsecuredSSHAccess    = "Unsecured SSH Access"
	TypeInsufficientLogging   = "Insufficient Logging"
	TypeOpenPorts             = "Open Ports"
	TypeMisconfiguredFirewall = "Misconfigured Firewall"
	TypeWeakPasswordPolicy    = "Weak Password Policy"
	TypeUnauthenticatedAccess = "Unauthenticated Access"
	TypeSensitiveDataAccess   = "Sensitive Data Access"
	TypeOther                 = "Other"
)

// VulnerabilityTypes is the closed set, in schema order.
var VulnerabilityTypes = []string{
	TypeWeakPasswords,
	TypeOutdatedSoftware,
	TypeSQLInjection,
	TypeXSS,
	TypeInsecureConfiguration,
	TypeUnauthorizedAccess,
	TypeSensitiveDataExposure,
	TypeUnsecuredSSHAccess,
	TypeInsufficientLogging,
	TypeOpenPorts,
	TypeMisconfiguredFirewall,
	TypeWeakPasswordPolicy,
	TypeUnauthenticatedAccess,
	TypeSensitiveDataAccess,
	TypeOther,
}

var knownTypes = func() map[string]struct{} {
	m := make(map[string]struct{}, len(VulnerabilityTypes))
	for _, t := range VulnerabilityTypes {
		m[t] = struct{}{}
	}
	return m
}()

// typeSynonyms maps labels scanners and models commonly emit onto the vocabulary.
// Lookup is exact-match.
var typeSynonyms = map[string]string{
	"Weak Password Policy":                TypeWeakPasswords,
	"Weak Password":                       TypeWeakPasswords,
	"Default Credentials":                 TypeWeakPasswords,
	"Outdated Packages":                   TypeOutdatedSoftware,
	"Outdated Package":                    TypeOutdatedSoftware,
	"Unpatched Software":                  TypeOutdatedSoftware,
	"SQLi":                                TypeSQLInjection,
	"Cross-Site Scripting":                TypeXSS,
	"Cross Site Scripting":                TypeXSS,
	"Cross-Site Scripting (XSS)":          TypeXSS,
	"Security Misconfiguration":           TypeInsecureConfiguration,
	"Unauthenticated Access":              TypeUnauthorizedAccess,
	"Sensitive Data Access":               TypeSensitiveDataExposure,
	"Information Disclosure":              TypeSensitiveDataExposure,
	"Insecure SSH Configuration":          TypeUnsecuredSSHAccess,
	"SSH Root Login":                      TypeUnsecuredSSHAccess,
	"Insufficient Logging and Monitoring": TypeInsufficientLogging,
	"Missing Logging":                     TypeInsufficientLogging,
	"Open Port":                           TypeOpenPorts,
	"Exposed Ports":                       TypeOpenPorts,
}

// NormalizeType maps a raw label through the synonym table. Labels that are
// still outside the vocabulary collapse to Other.
func NormalizeType(raw string) string {
	if mapped, ok := typeSynonyms[raw]; ok {
		return mapped
	}
	if IsKnownType(raw) {
		return raw
	}
	return TypeOther
}

// IsKnownType reports whether t belongs to the vocabulary.
func IsKnownType(t string) bool {
	_, ok := knownTypes[t]
	return ok
}
