package cipher

import (
	"regexp"
	"strconv"
	"strings"
)

// step is one signature transform operation: rev (reverse), spl (splice
// prefix), swp (swap with index 0).
type step struct {
	op  string
	arg int
}

var (
	sigFnRe   = regexp.MustCompile(`function\s*[a-zA-Z0-9$]*\s*\(\s*([a-zA-Z0-9$]+)\s*\)\s*\{([\s\S]*?)\}`)
	objFuncRe = regexp.MustCompile(`([a-zA-Z0-9$]+)\s*:\s*function\s*\(a(?:,b)?\)\s*\{([\s\S]*?)\}`)
)

// parsePlan extracts the signature transform plan from player.js without
// executing any JavaScript. Returns false when the source does not match the
// known shape.
func parsePlan(playerJS string) ([]step, bool) {
	var param, body string
	for _, m := range sigFnRe.FindAllStringSubmatch(playerJS, -1) {
		p, b := m[1], m[2]
		if strings.Contains(b, p+`.split("")`) && strings.Contains(b, `return `+p+`.join("")`) {
			param, body = p, b
			break
		}
	}
	if param == "" {
		return nil, false
	}

	// Transform object name from call sites like OBJ.fn(a, n).
	objNameRe := regexp.MustCompile(`([a-zA-Z0-9$]+)\.[a-zA-Z0-9$]+\(` + regexp.QuoteMeta(param) + `(?:,\s*\d+)?\)`)
	om := objNameRe.FindStringSubmatch(body)
	if len(om) < 2 {
		return nil, false
	}
	obj := om[1]

	// The trailing semicolon is required so the lazy match spans every
	// member function instead of stopping at the first inner brace.
	objRe := regexp.MustCompile(`(?:var|let|const)\s+` + regexp.QuoteMeta(obj) + `\s*=\s*\{([\s\S]*?)\}\s*;`)
	om2 := objRe.FindStringSubmatch(playerJS)
	if len(om2) < 2 {
		return nil, false
	}

	nameToOp := make(map[string]string)
	for _, fm := range objFuncRe.FindAllStringSubmatch(om2[1], -1) {
		fbody := fm[2]
		switch {
		case strings.Contains(fbody, ".reverse()"):
			nameToOp[fm[1]] = "rev"
		case strings.Contains(fbody, ".splice("):
			nameToOp[fm[1]] = "spl"
		case strings.Contains(fbody, "a[0]=a[") && strings.Contains(fbody, "%a.length]"):
			nameToOp[fm[1]] = "swp"
		}
	}
	if len(nameToOp) == 0 {
		return nil, false
	}

	callRe := regexp.MustCompile(regexp.QuoteMeta(obj) + `\.([a-zA-Z0-9$]+)\(` + regexp.QuoteMeta(param) + `(?:,\s*(\d+))?\)`)
	var plan []step
	for _, cm := range callRe.FindAllStringSubmatch(body, -1) {
		op, ok := nameToOp[cm[1]]
		if !ok {
			return nil, false
		}
		arg := 0
		// Reverse takes no meaningful argument even though call sites pass one.
		if op != "rev" && cm[2] != "" {
			if v, err := strconv.Atoi(cm[2]); err == nil {
				arg = v
			}
		}
		plan = append(plan, step{op: op, arg: arg})
	}
	return plan, len(plan) > 0
}

// applyPlan runs the transform plan over a signature.
func applyPlan(plan []step, signature string) string {
	r := []rune(signature)
	for _, s := range plan {
		switch s.op {
		case "rev":
			for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
				r[i], r[j] = r[j], r[i]
			}
		case "spl":
			if s.arg >= 0 && s.arg <= len(r) {
				r = r[s.arg:]
			}
		case "swp":
			if len(r) > 0 {
				k := s.arg % len(r)
				r[0], r[k] = r[k], r[0]
			}
		}
	}
	return string(r)
}
