package compiler

import (
	"strings"

	"mzcc/pkg/diag"
)

// Token sequences the validator looks for. The supported language is a
// fixed subset, so heuristic token scanning stands in for a real parser.
const (
	entryPointToken = "int main"
	printToken      = "printf"
	includeToken    = "stdio.h"
)

// Validate runs every acceptance rule over src and returns all errors and
// warnings together; rules are never short-circuited, so the caller sees
// every applicable problem in one pass. Validation is a pure function of
// the text. Line attribution is approximate: structural errors are pinned
// to line 1.
func Validate(src, name string) (errs, warns []diag.Diagnostic) {
	if !strings.Contains(src, entryPointToken) {
		errs = append(errs, diag.Errorf(name, 1, "entry point not found: expected 'int main'"))
	}

	if strings.Contains(src, printToken) && !strings.Contains(src, includeToken) {
		warns = append(warns, diag.Warningf(name, 1, "implicit declaration of 'printf': missing '#include <stdio.h>'"))
	}

	if open, close := strings.Count(src, "{"), strings.Count(src, "}"); open != close {
		errs = append(errs, diag.Errorf(name, 1, "unbalanced braces: %d '{' vs %d '}'", open, close))
	}

	if open, close := strings.Count(src, "("), strings.Count(src, ")"); open != close {
		errs = append(errs, diag.Errorf(name, 1, "unbalanced parentheses: %d '(' vs %d ')'", open, close))
	}

	return errs, warns
}
