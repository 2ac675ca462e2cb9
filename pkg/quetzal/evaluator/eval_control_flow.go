package evaluator

import (
	"strings"
)

// headerCondition returns the text between keyword and the block's opening
// brace, e.g. "(x > 3)" for "mientras (x > 3) {".
func headerCondition(header, keyword string) (string, bool) {
	open := blockOpen(header)
	if open < 0 || open < len(keyword) {
		return "", false
	}
	cond := strings.TrimSpace(header[len(keyword):open])
	return cond, cond != ""
}

// stripParens removes one pair of parentheses wrapping all of s.
func stripParens(s string) string {
	if strings.HasPrefix(s, "(") && matchingClose(s, 0) == len(s)-1 {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// loopControl interprets the signal a loop body ended with. stop ends the
// loop; out is a signal the loop must pass on.
func loopControl(sig *Signal) (stop bool, out *Signal) {
	if sig == nil {
		return false, nil
	}
	switch sig.Kind {
	case SignalBreak:
		return true, nil
	case SignalContinue:
		return false, nil
	}
	return true, sig
}

// execIf runs a si / sino si / sino chain. Conditions are evaluated in
// order until one holds; the remaining arms are skipped unevaluated.
func (in *Interpreter) execIf(lines []sourceLine, i int, env *Environment) (int, *sourceLine, *Signal) {
	header := lines[i].text
	idx := i
	taken := false
	for {
		no := lines[idx].no
		isElse := false
		cond := ""
		switch {
		case leadingWord(header) == "si":
			c, ok := headerCondition(header, "si")
			if !ok {
				return idx + 1, nil, errorSignal(no, newMalformedError("si", header))
			}
			cond = c
		case leadingWord(header) == "sino":
			rest := strings.TrimSpace(header[len("sino"):])
			switch {
			case leadingWord(rest) == "si":
				c, ok := headerCondition(rest, "si")
				if !ok {
					return idx + 1, nil, errorSignal(no, newMalformedError("sino si", header))
				}
				cond = c
			case strings.HasPrefix(rest, "{"):
				isElse = true
			default:
				return idx + 1, nil, errorSignal(no, newMalformedError("sino", header))
			}
		}

		body, end, rest, err := extractBlock(lines, idx, header)
		if err != nil {
			return idx + 1, nil, errorSignal(no, err)
		}
		if !taken {
			run := isElse
			if !isElse {
				ok, err := in.evalCondition(cond, env)
				if err != nil {
					return end + 1, nil, errorSignal(no, err)
				}
				run = ok
			}
			if run {
				taken = true
				if sig := in.execLines(body, env); sig != nil {
					return end + 1, nil, sig
				}
			}
		}

		if isElse {
			next, pending := afterBlock(lines, end, rest)
			return next, pending, nil
		}
		if rest != "" {
			if leadingWord(rest) == "sino" {
				header, idx = rest, end
				continue
			}
			next, pending := afterBlock(lines, end, rest)
			return next, pending, nil
		}
		if end+1 < len(lines) && leadingWord(lines[end+1].text) == "sino" {
			idx = end + 1
			header = lines[idx].text
			continue
		}
		return end + 1, nil, nil
	}
}

// execWhile runs "mientras (cond) { ... }".
func (in *Interpreter) execWhile(lines []sourceLine, i int, env *Environment) (int, *sourceLine, *Signal) {
	l := lines[i]
	cond, ok := headerCondition(l.text, "mientras")
	if !ok {
		return i + 1, nil, errorSignal(l.no, newMalformedError("mientras", l.text))
	}
	body, end, rest, err := extractBlock(lines, i, l.text)
	if err != nil {
		return i + 1, nil, errorSignal(l.no, err)
	}
	for {
		holds, err := in.evalCondition(cond, env)
		if err != nil {
			return end + 1, nil, errorSignal(l.no, err)
		}
		if !holds {
			break
		}
		if stop, sig := loopControl(in.execLines(body, env)); stop {
			if sig != nil {
				return end + 1, nil, sig
			}
			break
		}
	}
	next, pending := afterBlock(lines, end, rest)
	return next, pending, nil
}

// execFor runs both forms of para: C-style "para (init; cond; step) { }"
// and foreach "para ([tipo] x en coleccion) { }".
func (in *Interpreter) execFor(lines []sourceLine, i int, env *Environment) (int, *sourceLine, *Signal) {
	l := lines[i]
	inner, ok := headerCondition(l.text, "para")
	if !ok {
		return i + 1, nil, errorSignal(l.no, newMalformedError("para", l.text))
	}
	inner = stripParens(inner)
	body, end, rest, err := extractBlock(lines, i, l.text)
	if err != nil {
		return i + 1, nil, errorSignal(l.no, err)
	}

	var sig *Signal
	if indexTopLevel(inner, ";") >= 0 {
		sig = in.runCountedLoop(inner, body, l, env)
	} else {
		sig = in.runForEach(inner, body, l, env)
	}
	if sig != nil {
		return end + 1, nil, sig
	}
	next, pending := afterBlock(lines, end, rest)
	return next, pending, nil
}

func (in *Interpreter) runCountedLoop(inner string, body []sourceLine, l sourceLine, env *Environment) *Signal {
	parts := splitTopLevel(inner, ';')
	if len(parts) != 3 {
		return errorSignal(l.no, newMalformedError("para", l.text))
	}
	setup, cond, step := parts[0], parts[1], parts[2]
	if setup != "" {
		if err := in.execSimple(setup, env); err != nil {
			return errorSignal(l.no, err)
		}
	}
	for {
		if cond != "" {
			holds, err := in.evalCondition(cond, env)
			if err != nil {
				return errorSignal(l.no, err)
			}
			if !holds {
				return nil
			}
		}
		if stop, sig := loopControl(in.execLines(body, env)); stop {
			return sig
		}
		if step != "" {
			if err := in.execSimple(step, env); err != nil {
				return errorSignal(l.no, err)
			}
		}
	}
}

func (in *Interpreter) runForEach(inner string, body []sourceLine, l sourceLine, env *Environment) *Signal {
	at := indexWordTopLevel(inner, "en")
	if at < 0 {
		return errorSignal(l.no, newMalformedError("para", l.text))
	}
	binding := strings.Fields(inner[:at])
	var typeName, name string
	switch len(binding) {
	case 1:
		name = binding[0]
	case 2:
		typeName, name = binding[0], binding[1]
		if !in.isKnownType(typeName, env) {
			return errorSignal(l.no, newUnknownTypeError(typeName))
		}
	default:
		return errorSignal(l.no, newMalformedError("para", l.text))
	}
	if err := validateIdentifier(name); err != nil {
		return errorSignal(l.no, err)
	}

	collection, err := in.eval(inner[at+len("en"):], env)
	if err != nil {
		return errorSignal(l.no, err)
	}
	items, err := iterationItems(collection)
	if err != nil {
		return errorSignal(l.no, err)
	}

	for _, item := range items {
		if typeName != "" {
			v, err := coerceToDeclared(typeName, name, item)
			if err != nil {
				return errorSignal(l.no, err)
			}
			env.Declare(name, v, typeName, false)
		} else {
			env.Set(name, item)
		}
		if stop, sig := loopControl(in.execLines(body, env)); stop {
			return sig
		}
	}
	return nil
}

// iterationItems lists what a foreach loop visits: list elements, the
// characters of a string, or the sorted keys of a jsn value.
func iterationItems(v Value) ([]Value, error) {
	switch v := v.(type) {
	case *List:
		return append([]Value(nil), v.Elements...), nil
	case *String:
		var items []Value
		for _, r := range v.Value {
			items = append(items, &String{Value: string(r)})
		}
		return items, nil
	case *Map:
		keys := v.Keys()
		items := make([]Value, len(keys))
		for i, k := range keys {
			items[i] = &String{Value: k}
		}
		return items, nil
	}
	return nil, newNotIterableError(v)
}

// execDoWhile runs "hacer { ... } mientras (cond)". The condition follows
// the closing brace or sits alone on the next line.
func (in *Interpreter) execDoWhile(lines []sourceLine, i int, env *Environment) (int, *sourceLine, *Signal) {
	l := lines[i]
	body, end, rest, err := extractBlock(lines, i, l.text)
	if err != nil {
		return i + 1, nil, errorSignal(l.no, err)
	}

	var cond string
	next := end + 1
	switch {
	case leadingWord(rest) == "mientras":
		cond = strings.TrimSpace(rest[len("mientras"):])
	case rest == "" && next < len(lines) && leadingWord(lines[next].text) == "mientras" && !strings.HasSuffix(lines[next].text, "{"):
		cond = strings.TrimSpace(lines[next].text[len("mientras"):])
		next++
	}
	if cond == "" {
		return next, nil, errorSignal(l.no, newStructuredError("SINTAXIS-0010", nil))
	}

	for {
		if stop, sig := loopControl(in.execLines(body, env)); stop {
			if sig != nil {
				return next, nil, sig
			}
			break
		}
		holds, err := in.evalCondition(cond, env)
		if err != nil {
			return next, nil, errorSignal(l.no, err)
		}
		if !holds {
			break
		}
	}
	return next, nil, nil
}
