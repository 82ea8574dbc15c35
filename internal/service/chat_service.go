package service

import "strings"

// ChatResponder answers student help-chat messages.
type ChatResponder interface {
	Respond(message string) string
}

// chatRule maps trigger keywords to one canned reply. The first rule
// with a matching keyword wins, so order rules from specific to broad.
type chatRule struct {
	keywords []string
	reply    string
}

// CannedResponder is a keyword-matching chat helper. It never calls out
// to any external service; every reply is authored ahead of time.
type CannedResponder struct {
	rules    []chatRule
	fallback string
}

// NewCannedResponder builds the default study-buddy rule set.
func NewCannedResponder() *CannedResponder {
	return &CannedResponder{
		rules: []chatRule{
			{
				keywords: []string{"fraction", "decimal", "percent"},
				reply:    "Fractions, decimals and percents are three ways to write the same number. Try converting 1/2 to 0.5 and then to 50% to see the pattern!",
			},
			{
				keywords: []string{"equation", "algebra", "solve for"},
				reply:    "Whatever you do to one side of an equation, do to the other side too. Start by getting the variable alone on one side.",
			},
			{
				keywords: []string{"cell", "mitochondria", "nucleus"},
				reply:    "Every living thing is made of cells. The nucleus holds the instructions, and mitochondria turn food into energy the cell can use.",
			},
			{
				keywords: []string{"gravity", "force", "newton"},
				reply:    "A force is a push or a pull. Gravity pulls everything toward the center of the Earth, which is why dropped things fall down.",
			},
			{
				keywords: []string{"hint", "stuck", "help", "don't know", "dont know"},
				reply:    "Take it one step at a time! Read the question again slowly, rule out the answers you know are wrong, and pick the best of what's left.",
			},
			{
				keywords: []string{"hello", "hi ", "hey"},
				reply:    "Hi there! I'm your study buddy. Ask me about a topic you're working on, or say 'hint' if you're stuck on a question.",
			},
			{
				keywords: []string{"score", "points", "streak"},
				reply:    "You earn points for every game you finish, and playing every day keeps your streak growing. Check the dashboard to see how you're doing!",
			},
		},
		fallback: "That's a great question! Try picking a topic from the dashboard and playing a game about it. Practice is the best way to learn.",
	}
}

// Respond returns the reply for the first rule whose keyword appears in
// the message, or the fallback when nothing matches.
func (c *CannedResponder) Respond(message string) string {
	lowered := strings.ToLower(message)
	for _, rule := range c.rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.reply
			}
		}
	}
	return c.fallback
}
