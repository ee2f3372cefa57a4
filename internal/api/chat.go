package api

import (
	"context"
	"fmt"
)

// CreateChatSession opens a support session between a client and a chosen
// administrator and returns the session id.
func (c *Client) CreateChatSession(ctx context.Context, clientID, adminID string) (string, error) {
	body := struct {
		ClientID string `json:"client_id"`
		AdminID  string `json:"admin_id"`
	}{ClientID: clientID, AdminID: adminID}

	var resp struct {
		SessionID string `json:"session_id"`
		Status    string `json:"status"`
	}
	if err := c.do(ctx, "POST", "/chat/api/sessions", body, &resp, true); err != nil {
		return "", err
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("api: create chat session: response carried no session_id")
	}
	return resp.SessionID, nil
}

// ActiveSessions lists the sessions currently open, for the admin console.
func (c *Client) ActiveSessions(ctx context.Context) ([]ChatSession, error) {
	var sessions []ChatSession
	if err := c.do(ctx, "GET", "/chat/api/sessions/active", nil, &sessions, true); err != nil {
		return nil, err
	}
	return sessions, nil
}

// SessionMessages fetches a session's message history in timestamp order.
func (c *Client) SessionMessages(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	var messages []ChatMessage
	path := "/chat/api/sessions/" + sessionID + "/messages"
	if err := c.do(ctx, "GET", path, nil, &messages, true); err != nil {
		return nil, err
	}
	return messages, nil
}

// AIChat sends one user turn to the AI assistant and returns its reply.
func (c *Client) AIChat(ctx context.Context, message, userID string) (string, error) {
	body := struct {
		Message string `json:"message"`
		UserID  string `json:"user_id"`
	}{Message: message, UserID: userID}

	var resp struct {
		Response string `json:"response"`
		Type     string `json:"type"`
	}
	if err := c.do(ctx, "POST", "/chat/api/ai-chat", body, &resp, true); err != nil {
		return "", err
	}
	return resp.Response, nil
}
