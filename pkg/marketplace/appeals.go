package marketplace

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_market/pkg/account"
	"github.com/GTDGit/gtd_market/pkg/eligibility"
)

// Complaint is an appeal filed against another user.
type Complaint struct {
	ID          int       `json:"id"`
	IRI         string    `json:"@id"`
	Title       string    `json:"title"`
	Reason      string    `json:"reason"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	Respondent  string    `json:"respondent"`
	Ticket      string    `json:"ticket,omitempty"`
	Chat        string    `json:"chat,omitempty"`
	Status      string    `json:"status"`
	Images      []Photo   `json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Chat is a conversation between two users.
type Chat struct {
	ID           int       `json:"id"`
	IRI          string    `json:"@id"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Reasons returns the complaint reasons. When the list cannot be loaded or
// is empty the single "other" reason is offered.
func (c *Client) Reasons(ctx context.Context) []eligibility.Reason {
	reasons, err := getList[eligibility.Reason](ctx, c, "/api/appeal-reasons", nil)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load complaint reasons")
		return eligibility.ResolveReasons(nil)
	}
	return eligibility.ResolveReasons(reasons)
}

// Complaints lists the signed-in user's own complaints.
func (c *Client) Complaints(ctx context.Context) ([]Complaint, error) {
	return getList[Complaint](ctx, c, "/api/appeals", nil)
}

// FindChat returns the chat with otherID, or nil when there is none.
func (c *Client) FindChat(ctx context.Context, otherID int) (*Chat, error) {
	chats, err := getList[Chat](ctx, c, "/api/chats", url.Values{"with": []string{strconv.Itoa(otherID)}})
	if err != nil {
		return nil, err
	}
	if len(chats) == 0 {
		return nil, nil
	}
	return &chats[0], nil
}

// OpenChat returns the chat with otherID, creating it when needed.
func (c *Client) OpenChat(ctx context.Context, otherID int) (*Chat, error) {
	chat, err := c.FindChat(ctx, otherID)
	if err != nil || chat != nil {
		return chat, err
	}

	var created Chat
	body := map[string]string{"participant": account.UserIRI(otherID)}
	err = c.doRequest(ctx, http.MethodPost, "/api/chats", nil, body, &created)
	if IsKind(err, KindConflict) {
		// Created concurrently by the other side.
		return c.FindChat(ctx, otherID)
	}
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// SubmitComplaint files a complaint by actor against targetID. When ticketID
// is 0 the complaint is linked to the chat between the two, which is opened
// if it does not exist yet. Photos are uploaded one by one afterwards.
func (c *Client) SubmitComplaint(ctx context.Context, actor account.Actor, targetID, ticketID int, draft eligibility.ComplaintDraft) (*Complaint, PhotoReport, error) {
	target := eligibility.Party{ID: targetID}
	if err := eligibility.CheckComplaint(actor, target); err != nil {
		return nil, PhotoReport{}, err
	}

	api := c.As(actor)
	link := eligibility.Link{TicketID: ticketID}
	if ticketID <= 0 {
		chat, err := api.OpenChat(ctx, targetID)
		if err != nil {
			return nil, PhotoReport{}, fmt.Errorf("open chat: %w", err)
		}
		if chat != nil {
			link.ChatID = chat.ID
			if link.ChatID == 0 {
				if link.ChatID, err = eligibility.ParseChatIRI(chat.IRI); err != nil {
					return nil, PhotoReport{}, fmt.Errorf("open chat: %w", err)
				}
			}
		}
	}

	payload, err := eligibility.BuildComplaint(actor, target, link, draft)
	if err != nil {
		return nil, PhotoReport{}, err
	}

	var complaint Complaint
	if err := api.doRequest(ctx, http.MethodPost, "/api/appeals", nil, payload, &complaint); err != nil {
		return nil, PhotoReport{}, err
	}

	report := api.uploadAll(ctx, fmt.Sprintf("/api/appeals/%d/photos", complaint.ID), draft.Photos)
	complaint.Images = append(complaint.Images, report.Uploaded...)
	return &complaint, report, nil
}
