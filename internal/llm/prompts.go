package llm

import (
	"fmt"
	"strings"

	"github.com/Harshitk-cp/ise/internal/domain"
)

var fallacyDescriptions = map[domain.FallacyType]string{
	domain.FallacyAdHominem:           "attacks the person instead of the claim",
	domain.FallacyStrawMan:            "refutes a distorted version of the claim",
	domain.FallacyFalseDilemma:        "presents two options when more exist",
	domain.FallacySlipperySlope:       "asserts an unsupported chain of consequences",
	domain.FallacyAppealToAuthority:   "relies on who said it rather than why it holds",
	domain.FallacyCircularReasoning:   "assumes the conclusion it sets out to prove",
	domain.FallacyHastyGeneralization: "draws a broad rule from too few cases",
	domain.FallacyRedHerring:          "changes the subject away from the claim",
	domain.FallacyUnknown:             "a clear flaw that fits none of the above",
}

var fallacySystemPrompt = buildFallacySystemPrompt()

func buildFallacySystemPrompt() string {
	var b strings.Builder
	b.WriteString("You are a debate moderator. Identify the logical fallacies committed by an argument made about a parent claim.\n\n")
	b.WriteString("Use only these fallacy types:\n")
	for _, f := range domain.AllFallacyTypes() {
		fmt.Fprintf(&b, "- %q: %s\n", f, fallacyDescriptions[f])
	}
	b.WriteString("\nList a type once per distinct instance. Respond ONLY with a JSON array of type strings. No markdown, no explanation. Example:\n")
	b.WriteString(`["ad_hominem","false_dilemma"]`)
	b.WriteString("\n\nIf the argument commits no fallacy, respond with an empty array: []")
	return b.String()
}

func fallacyUserPrompt(statement, parentStatement string) string {
	return fmt.Sprintf("Parent claim: %s\nArgument: %s", parentStatement, statement)
}
