// Package mailbox implements each agent's per-team inbox: an append-only
// JSON array file with atomic read-and-mark-read semantics under a shared
// per-team lock. Writers append under the lock; readers that mark messages
// as read rewrite the whole file under the same lock region.
package mailbox

import (
	"encoding/json"
	"os"
	"time"

	"github.com/agentteams/teamctl/internal/apperr"
	"github.com/agentteams/teamctl/internal/model"
	"github.com/agentteams/teamctl/internal/paths"
)

// Mailbox is a path-rooted handle onto a team's agent mailboxes.
type Mailbox struct {
	layout paths.Layout
}

// New returns a Mailbox rooted at root.
func New(root string) *Mailbox {
	return &Mailbox{layout: paths.NewLayout(root)}
}

// NowISO formats t in the millisecond-precision UTC timestamp format used
// on every mailbox message and structured payload, e.g.
// "2026-01-02T15:04:05.000Z".
func NowISO(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// readArray loads agent's mailbox file, returning an empty array if the
// mailbox has never been written to.
func (m *Mailbox) readArray(team, agent string) ([]model.InboxMessage, error) {
	data, err := os.ReadFile(m.layout.InboxPath(team, agent))
	if os.IsNotExist(err) {
		return []model.InboxMessage{}, nil
	}
	if err != nil {
		return nil, apperr.IOFailure("reading mailbox", err)
	}
	var msgs []model.InboxMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, apperr.IOFailure("parsing mailbox", err)
	}
	return msgs, nil
}

func (m *Mailbox) writeArray(team, agent string, msgs []model.InboxMessage) error {
	if err := os.MkdirAll(m.layout.InboxesDir(team), 0o755); err != nil {
		return apperr.IOFailure("creating inboxes directory", err)
	}
	data, err := json.MarshalIndent(msgs, "", "  ")
	if err != nil {
		return apperr.IOFailure("encoding mailbox", err)
	}
	if err := os.WriteFile(m.layout.InboxPath(team, agent), data, 0o644); err != nil {
		return apperr.IOFailure("writing mailbox", err)
	}
	return nil
}

// AppendMessage appends msg to agent's mailbox under the team's inbox lock.
func (m *Mailbox) AppendMessage(team, agent string, msg model.InboxMessage) error {
	return paths.WithLock(m.layout.InboxLockPath(team), func() error {
		msgs, err := m.readArray(team, agent)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
		return m.writeArray(team, agent, msgs)
	})
}

// ReadInbox returns agent's mailbox contents. If unreadOnly, only messages
// with Read=false are returned. If markAsRead, the returned records are
// flipped to Read=true and rewritten under the same lock region as the
// read, so a concurrent reader can never observe a message as both
// delivered to it and still unread.
func (m *Mailbox) ReadInbox(team, agent string, unreadOnly, markAsRead bool) ([]model.InboxMessage, error) {
	if !markAsRead {
		all, err := m.readArray(team, agent)
		if err != nil {
			return nil, err
		}
		if !unreadOnly {
			return all, nil
		}
		return filterUnread(all), nil
	}

	var result []model.InboxMessage
	err := paths.WithLock(m.layout.InboxLockPath(team), func() error {
		all, err := m.readArray(team, agent)
		if err != nil {
			return err
		}
		if unreadOnly {
			result = filterUnread(all)
		} else {
			result = append(result, all...)
		}
		for i := range all {
			all[i].Read = true
		}
		return m.writeArray(team, agent, all)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func filterUnread(msgs []model.InboxMessage) []model.InboxMessage {
	var out []model.InboxMessage
	for _, m := range msgs {
		if !m.Read {
			out = append(out, m)
		}
	}
	return out
}

// SendPlainMessage appends a free-text message from "from" to agent's
// mailbox, stamped with the current time.
func (m *Mailbox) SendPlainMessage(team, agent, from, text, summary, color string, now time.Time) error {
	msg := model.InboxMessage{From: from, Text: text, Timestamp: NowISO(now)}
	if summary != "" {
		msg.Summary = &summary
	}
	if color != "" {
		msg.Color = &color
	}
	return m.AppendMessage(team, agent, msg)
}

// sendStructured marshals payload into an InboxMessage's Text field, the
// uniform-storage convention: the payload variant is never exposed in the
// outer message schema, only its serialized form.
func (m *Mailbox) sendStructured(team, agent, from string, payload interface{}, now time.Time) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return apperr.IOFailure("encoding structured payload", err)
	}
	msg := model.InboxMessage{From: from, Text: string(data), Timestamp: NowISO(now)}
	return m.AppendMessage(team, agent, msg)
}

// SendTaskAssignment delivers a TaskAssignment payload to agent's mailbox.
func (m *Mailbox) SendTaskAssignment(team, agent string, payload model.TaskAssignment, now time.Time) error {
	return m.sendStructured(team, agent, payload.AssignedBy, payload, now)
}

// SendShutdownRequest delivers a ShutdownRequest payload to agent's mailbox.
func (m *Mailbox) SendShutdownRequest(team, agent string, payload model.ShutdownRequest, now time.Time) error {
	return m.sendStructured(team, agent, payload.From, payload, now)
}

// SendShutdownApproved delivers a ShutdownApproved payload to agent's mailbox.
func (m *Mailbox) SendShutdownApproved(team, agent string, payload model.ShutdownApproved, now time.Time) error {
	return m.sendStructured(team, agent, payload.From, payload, now)
}

// SendIdleNotification delivers an IdleNotification payload to agent's mailbox.
func (m *Mailbox) SendIdleNotification(team, agent string, payload model.IdleNotification, now time.Time) error {
	return m.sendStructured(team, agent, payload.From, payload, now)
}

// EnsureInbox creates agent's mailbox file (as an empty array) if absent.
func (m *Mailbox) EnsureInbox(team, agent string) error {
	return paths.WithLock(m.layout.InboxLockPath(team), func() error {
		if _, err := os.Stat(m.layout.InboxPath(team, agent)); err == nil {
			return nil
		}
		return m.writeArray(team, agent, []model.InboxMessage{})
	})
}
