package klass

import (
	"regexp"
	"strings"

	"github.com/teranos/stubgen/scan"
)

var (
	signalSectionRe = regexp.MustCompile(`\b(?:Q_SIGNALS|signals)\s*:`)
	sectionEndRe    = regexp.MustCompile(`\b(?:(?:public|protected|private)(?:\s+(?:Q_SLOTS|slots))?|Q_SIGNALS|signals|Q_SLOTS)\s*:[^:]`)
	signalDeclRe    = regexp.MustCompile(`\bvoid\s+(\w+)\s*\(([^)]*)\)\s*;`)
)

// SignalType is the Python type of a Qt signal class attribute.
const SignalType = "qtpy.QtCore.Signal"

// Signal is a Qt signal declared by the native twin class.
type Signal struct {
	Name string
	// Args is the native parameter list, kept verbatim.
	Args string
}

// String renders the class attribute line for the signal.
//
//	windowStateChanged: qtpy.QtCore.Signal  # (QWidget*)
func (s Signal) String() string {
	line := s.Name + ": " + SignalType
	if s.Args != "" {
		line += "  # (" + s.Args + ")"
	}
	return line
}

// Signals lists the Qt signals of the twin class of className (which must end
// in Py) declared in header.
func Signals(className, header string) []Signal {
	native, ok := strings.CutSuffix(className, "Py")
	if !ok || header == "" {
		return nil
	}
	body := classBody(native, header)
	if body == "" {
		return nil
	}

	var out []Signal
	for _, loc := range signalSectionRe.FindAllStringIndex(body, -1) {
		section := body[loc[1]:]
		if end := sectionEndRe.FindStringIndex(section); end != nil {
			section = section[:end[0]]
		}
		for _, m := range signalDeclRe.FindAllStringSubmatch(section, -1) {
			out = append(out, Signal{Name: m[1], Args: strings.Join(strings.Fields(m[2]), " ")})
		}
	}
	return out
}

// classBody returns the braced body of the class named native in header.
func classBody(native, header string) string {
	re := regexp.MustCompile(`class\s+(?:\w+\s+)?` + regexp.QuoteMeta(native) + `\b[^{;]*\{`)
	loc := re.FindStringIndex(header)
	if loc == nil {
		return ""
	}
	return scan.FindBlock(header, loc[0])
}
