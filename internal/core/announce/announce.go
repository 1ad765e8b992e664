// Package announce composes the weekly crew announcement.
// This is part of the Functional Core - mention lookup is injected.
package announce

import (
	"fmt"
	"strings"
)

// Case identifies which announcement variant was composed.
type Case string

const (
	CaseComplete Case = "complete" // week was already staffed, nobody drawn
	CaseLottery  Case = "lottery"  // week was empty, whole crew drawn
	CaseMixed    Case = "mixed"    // volunteers present, rest drawn
)

// Tagger resolves a member id to a chat mention or plain name.
// It must not fail; unresolvable members degrade to plain text.
type Tagger func(memberID string) string

// Input contains the pre-computed data the message is built from.
type Input struct {
	Period      int
	TargetSize  int
	ExistingIDs []string // participants present before the draw
	Needed      int
	DrawnIDs    []string
}

// Message is a composed announcement.
type Message struct {
	Case Case
	Text string
}

// Compose builds the announcement for a run. The variant depends only on the
// need and the draw; the text never comes out blank.
func Compose(in Input, tag Tagger) Message {
	existing := tags(in.ExistingIDs, tag)
	drawn := tags(in.DrawnIDs, tag)

	switch {
	case in.Needed <= 0 && len(drawn) == 0:
		return Message{Case: CaseComplete, Text: completeText(in.Period, existing)}
	case len(existing) == 0 || in.Needed >= in.TargetSize:
		return Message{Case: CaseLottery, Text: lotteryText(in.Period, drawn)}
	default:
		return Message{Case: CaseMixed, Text: mixedText(in.Period, existing, drawn)}
	}
}

func header(period int) string {
	return fmt.Sprintf("🧹 *Putzplan KW %d ist da!* 🧹\n\n", period)
}

func completeText(period int, existing []string) string {
	if len(existing) == 0 {
		return header(period) + "Die Putzcrew für diese Woche steht bereits."
	}
	return header(period) +
		fmt.Sprintf("Die Putzcrew ist schon komplett. Danke an %s fürs Eintragen! 🙌", join(existing))
}

func lotteryText(period int, drawn []string) string {
	if len(drawn) == 0 {
		return header(period) + "Leider war diese Woche niemand im Lostopf. Bitte tragt euch selbst ein!"
	}
	return header(period) + fmt.Sprintf("Diese Woche sind dran: %s", join(drawn))
}

func mixedText(period int, existing, drawn []string) string {
	var b strings.Builder
	b.WriteString(header(period))
	fmt.Fprintf(&b, "Danke an %s fürs freiwillige Eintragen! 🙌", join(existing))
	if len(drawn) > 0 {
		fmt.Fprintf(&b, "\nDazu gelost wurden: %s", join(drawn))
	}
	return b.String()
}

func tags(ids []string, tag Tagger) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		t := ""
		if tag != nil {
			t = strings.TrimSpace(tag(id))
		}
		if t == "" {
			t = id
		}
		out = append(out, t)
	}
	return out
}

// join lists names German style: "a", "a und b", "a, b und c".
func join(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " und " + names[len(names)-1]
}
