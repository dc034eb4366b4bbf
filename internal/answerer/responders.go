package answerer

import (
	"fmt"
	"strings"
)

// Responder is one strategy in the answer chain. It returns ok=false when the
// query is not its business and the next strategy should be tried.
type Responder interface {
	Respond(query string, contextBlocks []string) (answer string, ok bool)
}

// StaticResponder answers a fixed set of common questions without touching
// the model, keyed by phrase match on the lowercased query.
type StaticResponder struct {
	contactEmail string
}

func NewStaticResponder(contactEmail string) *StaticResponder {
	return &StaticResponder{contactEmail: contactEmail}
}

var contactPhrases = []string{
	"how can i contact", "how to contact", "how do i contact",
	"contact information", "your phone", "your email",
}

var overviewPhrases = []string{
	"who are you", "what do you do", "about idc",
}

func (r *StaticResponder) Respond(query string, _ []string) (string, bool) {
	lower := strings.ToLower(query)
	for _, phrase := range contactPhrases {
		if strings.Contains(lower, phrase) {
			return fmt.Sprintf("You can contact IDC Technologies in several ways:\n\n"+
				"* Email: %s\n* Visit our 'Contact Us' page on the website\n\n"+
				"Our team will be happy to assist you with your inquiries!", r.contactEmail), true
		}
	}
	for _, phrase := range overviewPhrases {
		if strings.Contains(lower, phrase) {
			return "IDC Technologies is a global leader in IT staffing and workforce solutions, " +
				"delivering talent across multiple industries with permanent, temporary, " +
				"and temporary-to-permanent employment opportunities.", true
		}
	}
	return "", false
}

// KnowledgeGapResponder fires when retrieval produced no context, so the
// model is never asked to answer from thin air.
type KnowledgeGapResponder struct {
	contactEmail string
}

func NewKnowledgeGapResponder(contactEmail string) *KnowledgeGapResponder {
	return &KnowledgeGapResponder{contactEmail: contactEmail}
}

func (r *KnowledgeGapResponder) Respond(_ string, contextBlocks []string) (string, bool) {
	if len(contextBlocks) > 0 {
		return "", false
	}
	return fmt.Sprintf("I don't have enough information in my knowledge base to answer that question. "+
		"Please try asking about our services, global presence, or employment opportunities.\n\n"+
		"For more detailed assistance, you can contact us directly at %s.", r.contactEmail), true
}

// technicalIssueMessage is the reply of last resort when the model call fails.
func technicalIssueMessage(contactEmail string) string {
	return fmt.Sprintf("I'm sorry, I encountered a technical issue while processing your question. "+
		"Please try again or contact us directly at %s for assistance.", contactEmail)
}
