// Credit to https://github.com/santhosh-tekuri/jsonschema for the bulk of
// these format validators, ported from the teacher's formats.go.
package jsonschema

import (
	"net"
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// defaultFormats returns the built-in format validator table a fresh
// Compiler is seeded with (teacher's package-level Formats map, generalized
// into a Compiler-scoped registry so callers can Register over it without
// mutating global state).
func defaultFormats() map[string]FormatFunc {
	return map[string]FormatFunc{
		"date-time":             isDateTime,
		"date":                  isDate,
		"time":                  isTime,
		"duration":              isDuration,
		"period":                isPeriod,
		"hostname":              isHostname,
		"idn-hostname":          isHostname,
		"email":                 isEmail,
		"idn-email":             isEmail,
		"ip-address":            isIPV4,
		"ipv4":                  isIPV4,
		"ipv6":                  isIPV6,
		"uri":                   isURI,
		"iri":                   isURI,
		"uri-reference":         isURIReference,
		"iri-reference":         isURIReference,
		"uri-template":          isURITemplate,
		"json-pointer":          isJSONPointer,
		"relative-json-pointer": isRelativeJSONPointer,
		"uuid":                  isUUID,
		"regex":                 isRegexFormat,
	}
}

func stringOf(v Value) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func isDateTime(v Value) bool {
	s, ok := stringOf(v)
	if !ok {
		return true
	}
	if len(s) < 20 {
		return false
	}
	if s[10] != 'T' && s[10] != 't' {
		return false
	}
	return isDate(s[:10]) && isTime(s[11:])
}

func isDate(v Value) bool {
	s, ok := stringOf(v)
	if !ok {
		return true
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func isTime(v Value) bool {
	str, ok := stringOf(v)
	if !ok {
		return true
	}
	if len(str) < 9 || str[2] != ':' || str[5] != ':' {
		return false
	}
	inRange := func(s string, min, max int) (int, bool) {
		n, err := strconv.Atoi(s)
		if err != nil || n < min || n > max {
			return 0, false
		}
		return n, true
	}
	var h, m, s int
	var ok2 bool
	if h, ok2 = inRange(str[0:2], 0, 23); !ok2 {
		return false
	}
	if m, ok2 = inRange(str[3:5], 0, 59); !ok2 {
		return false
	}
	if s, ok2 = inRange(str[6:8], 0, 60); !ok2 {
		return false
	}
	str = str[8:]

	if len(str) > 0 && str[0] == '.' {
		str = str[1:]
		digits := 0
		for str != "" && str[0] >= '0' && str[0] <= '9' {
			digits++
			str = str[1:]
		}
		if digits == 0 {
			return false
		}
	}
	if len(str) == 0 {
		return false
	}
	if str[0] == 'z' || str[0] == 'Z' {
		if len(str) != 1 {
			return false
		}
	} else {
		if len(str) != 6 || str[3] != ':' {
			return false
		}
		var sign int
		switch str[0] {
		case '+':
			sign = -1
		case '-':
			sign = +1
		default:
			return false
		}
		var zh, zm int
		if zh, ok2 = inRange(str[1:3], 0, 23); !ok2 {
			return false
		}
		if zm, ok2 = inRange(str[4:6], 0, 59); !ok2 {
			return false
		}
		hm := (h*60 + m) + sign*(zh*60+zm)
		if hm < 0 {
			hm += 24 * 60
		}
		h, m = hm/60, hm%60
	}
	if s == 60 && (h != 23 || m != 59) {
		return false
	}
	return true
}

func isDuration(v Value) bool {
	s, ok := stringOf(v)
	if !ok {
		return true
	}
	if len(s) == 0 || s[0] != 'P' {
		return false
	}
	s = s[1:]
	parseUnits := func() (string, bool) {
		units := ""
		for len(s) > 0 && s[0] != 'T' {
			digits := false
			for len(s) != 0 && s[0] >= '0' && s[0] <= '9' {
				digits = true
				s = s[1:]
			}
			if !digits || len(s) == 0 {
				return units, false
			}
			units += s[:1]
			s = s[1:]
		}
		return units, true
	}
	units, ok := parseUnits()
	if !ok {
		return false
	}
	if units == "W" {
		return len(s) == 0
	}
	if len(units) > 0 {
		if !strings.Contains("YMD", units) {
			return false
		}
		if len(s) == 0 {
			return true
		}
	}
	if len(s) == 0 || s[0] != 'T' {
		return false
	}
	s = s[1:]
	units, ok = parseUnits()
	return ok && len(s) == 0 && len(units) > 0 && strings.Contains("HMS", units)
}

func isPeriod(v Value) bool {
	s, ok := stringOf(v)
	if !ok {
		return true
	}
	slash := strings.IndexByte(s, '/')
	if slash == -1 {
		return false
	}
	start, end := s[:slash], s[slash+1:]
	if isDateTime(start) {
		return isDateTime(end) || isDuration(end)
	}
	return isDuration(start) && isDateTime(end)
}

func isHostname(v Value) bool {
	s, ok := stringOf(v)
	if !ok {
		return true
	}
	s = strings.TrimSuffix(s, ".")
	if len(s) > 253 {
		return false
	}
	for _, label := range strings.Split(s, ".") {
		if n := len(label); n < 1 || n > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for _, c := range label {
			valid := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-'
			if !valid {
				return false
			}
		}
	}
	return true
}

func isEmail(v Value) bool {
	s, ok := stringOf(v)
	if !ok {
		return true
	}
	if len(s) > 254 {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	if at == -1 {
		return false
	}
	local, domain := s[:at], s[at+1:]
	if len(local) > 64 {
		return false
	}
	if len(domain) >= 2 && domain[0] == '[' && domain[len(domain)-1] == ']' {
		ip := domain[1 : len(domain)-1]
		if strings.HasPrefix(ip, "IPv6:") {
			return isIPV6(strings.TrimPrefix(ip, "IPv6:"))
		}
		return isIPV4(ip)
	}
	if !isHostname(domain) {
		return false
	}
	_, err := mail.ParseAddress(s)
	return err == nil
}

func isIPV4(v Value) bool {
	s, ok := stringOf(v)
	if !ok {
		return true
	}
	groups := strings.Split(s, ".")
	if len(groups) != 4 {
		return false
	}
	for _, g := range groups {
		n, err := strconv.Atoi(g)
		if err != nil || n < 0 || n > 255 {
			return false
		}
		if n != 0 && g[0] == '0' {
			return false
		}
	}
	return true
}

func isIPV6(v Value) bool {
	s, ok := stringOf(v)
	if !ok {
		return true
	}
	if !strings.Contains(s, ":") {
		return false
	}
	return net.ParseIP(s) != nil
}

func isURI(v Value) bool {
	s, ok := stringOf(v)
	if !ok {
		return true
	}
	u, err := uriParse(s)
	return err == nil && u.IsAbs()
}

func uriParse(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	hostname := u.Hostname()
	if strings.IndexByte(hostname, ':') != -1 {
		if strings.IndexByte(u.Host, '[') == -1 || strings.IndexByte(u.Host, ']') == -1 {
			return nil, ErrIPv6AddressFormat
		}
		if !isIPV6(hostname) {
			return nil, ErrInvalidIPv6
		}
	}
	return u, nil
}

func isURIReference(v Value) bool {
	s, ok := stringOf(v)
	if !ok {
		return true
	}
	_, err := uriParse(s)
	return err == nil && !strings.Contains(s, `\`)
}

func isURITemplate(v Value) bool {
	s, ok := stringOf(v)
	if !ok {
		return true
	}
	u, err := uriParse(s)
	if err != nil {
		return false
	}
	for _, item := range strings.Split(u.RawPath, "/") {
		depth := 0
		for _, ch := range item {
			switch ch {
			case '{':
				depth++
				if depth != 1 {
					return false
				}
			case '}':
				depth--
				if depth != 0 {
					return false
				}
			}
		}
		if depth != 0 {
			return false
		}
	}
	return true
}

func isJSONPointer(v Value) bool {
	s, ok := stringOf(v)
	if !ok {
		return true
	}
	if s != "" && !strings.HasPrefix(s, "/") {
		return false
	}
	for _, item := range strings.Split(s, "/") {
		for i := 0; i < len(item); i++ {
			if item[i] == '~' {
				if i == len(item)-1 {
					return false
				}
				switch item[i+1] {
				case '0', '1':
				default:
					return false
				}
			}
		}
	}
	return true
}

func isRelativeJSONPointer(v Value) bool {
	s, ok := stringOf(v)
	if !ok {
		return true
	}
	if s == "" {
		return false
	}
	switch {
	case s[0] == '0':
		s = s[1:]
	case s[0] >= '0' && s[0] <= '9':
		for s != "" && s[0] >= '0' && s[0] <= '9' {
			s = s[1:]
		}
	default:
		return false
	}
	return s == "#" || isJSONPointer(s)
}

// isUUID validates RFC 4122 UUIDs via google/uuid rather than the teacher's
// hand-rolled hex-group scanner; this is the module's only use of
// google/uuid.
func isUUID(v Value) bool {
	s, ok := stringOf(v)
	if !ok {
		return true
	}
	_, err := uuid.Parse(s)
	return err == nil
}

func isRegexFormat(v Value) bool {
	s, ok := stringOf(v)
	if !ok {
		return true
	}
	_, err := regexp.Compile(s)
	return err == nil
}
