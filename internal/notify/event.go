// ABOUTME: Notification event type and Portuguese message composition
// ABOUTME: Builds body, title and journal page URL for each notification kind

package notify

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/2389/cafofo/internal/journal"
)

// Kind is the notification kind.
type Kind string

const (
	Created   Kind = "created"
	Edited    Kind = "edited"
	Commented Kind = "commented"
)

// PagePath is the journal page route opened by a notification.
const PagePath = "/journal/page"

// Event is one notification addressed to one user.
type Event struct {
	Kind         Kind
	Title        string
	Body         string
	URL          string
	TargetUserID string
	SenderID     string
}

// PageURL returns the journal page link for owner's entry on date.
func PageURL(ownerID string, date journal.Date) string {
	q := url.Values{}
	q.Set("date", date.String())
	if ownerID != "" {
		q.Set("userId", ownerID)
	}
	return PagePath + "?" + q.Encode()
}

// displayName prefixes the name with its article, e.g. "A Ana".
func displayName(u journal.User) string {
	name := u.Name
	if name == "" {
		name = u.ID
	}
	switch u.Pronoun {
	case journal.PronounFeminine:
		return "A " + name
	case journal.PronounMasculine:
		return "O " + name
	default:
		return name
	}
}

// possessive returns "da Ana"/"do Bruno" for third-person references.
func possessive(u journal.User) string {
	name := u.Name
	if name == "" {
		name = u.ID
	}
	switch u.Pronoun {
	case journal.PronounFeminine:
		return "da " + name
	case journal.PronounMasculine:
		return "do " + name
	default:
		return "de " + name
	}
}

func formatDay(d journal.Date) string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}

// Compose builds the event actor causes on owner's entry, addressed to target.
func Compose(kind Kind, actor, owner, target journal.User, date journal.Date) Event {
	day := formatDay(date)
	var title, body string
	switch kind {
	case Created:
		title = "Nova página no diário"
		body = fmt.Sprintf("%s escreveu no diário do dia %s", displayName(actor), day)
	case Edited:
		title = "Página editada"
		if actor.ID == owner.ID {
			body = fmt.Sprintf("%s editou a página do dia %s", displayName(actor), day)
		} else {
			body = fmt.Sprintf("%s editou a página %s do dia %s", displayName(actor), possessive(owner), day)
		}
	case Commented:
		title = "Novo comentário"
		if target.ID == owner.ID {
			body = fmt.Sprintf("%s comentou na sua página do dia %s", displayName(actor), day)
		} else {
			body = fmt.Sprintf("%s comentou na página %s do dia %s", displayName(actor), possessive(owner), day)
		}
	default:
		title = "Diário"
		body = fmt.Sprintf("%s mexeu no diário do dia %s", displayName(actor), day)
	}

	return Event{
		Kind:         kind,
		Title:        title,
		Body:         strings.TrimSpace(body),
		URL:          PageURL(owner.ID, date),
		TargetUserID: target.ID,
		SenderID:     actor.ID,
	}
}
