package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/onlinemarketplace/marketplace-api/internal/api/metrics"
	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

// ChatHandler serves chats and their messages. Clients poll for new messages.
type ChatHandler struct {
	chats ports.ChatService
}

func NewChatHandler(chats ports.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// participantsRequest lists participants by account id ("42") or username.
type participantsRequest struct {
	Participants []string `json:"participants" validate:"max=50"`
}

type postMessageRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type chatResponse struct {
	ID           int64   `json:"id"`
	Participants []int64 `json:"participants"`
	CreatedAt    string  `json:"created_at"`
}

type messageResponse struct {
	ID        int64  `json:"id"`
	ContactID int64  `json:"contact_id"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

type chatDetailResponse struct {
	chatResponse
	Contacts []*domain.Contact `json:"contacts"`
	Messages []messageResponse `json:"messages"`
}

func toChatResponse(ch *domain.Chat) chatResponse {
	participants := ch.Participants
	if participants == nil {
		participants = []int64{}
	}
	return chatResponse{
		ID:           ch.ID,
		Participants: participants,
		CreatedAt:    ch.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toMessageResponses(msgs []*domain.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageResponse{
			ID:        m.ID,
			ContactID: m.ContactID,
			Content:   m.Content,
			Timestamp: m.Timestamp.UTC().Format(time.RFC3339Nano),
		})
	}
	return out
}

func toChatDetailResponse(d *ports.ChatDetail) chatDetailResponse {
	contacts := make([]*domain.Contact, 0, len(d.Participants))
	for _, ct := range d.Participants {
		contacts = append(contacts, contactResponse(ct))
	}
	return chatDetailResponse{
		chatResponse: toChatResponse(d.Chat),
		Contacts:     contacts,
		Messages:     toMessageResponses(d.Messages),
	}
}

func identities(raw []string) []domain.ContactIdentity {
	out := make([]domain.ContactIdentity, 0, len(raw))
	for _, r := range raw {
		out = append(out, domain.ParseContactIdentity(r))
	}
	return out
}

// List returns the caller's chats.
//
// @Summary      List chats
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  chatResponse
// @Router       /chats [get]
func (h *ChatHandler) List(c echo.Context) error {
	accountID, err := actorID(c)
	if err != nil {
		return err
	}

	chats, err := h.chats.List(c.Request().Context(), accountID)
	if err != nil {
		return err
	}
	out := make([]chatResponse, 0, len(chats))
	for _, ch := range chats {
		out = append(out, toChatResponse(ch))
	}
	return c.JSON(http.StatusOK, out)
}

// Create opens a chat with the given participants. The caller is always included.
//
// @Summary      Create a chat
// @Tags         chats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      participantsRequest  true  "Participants"
// @Success      201   {object}  chatDetailResponse
// @Failure      404   {object}  errorBody
// @Router       /chats [post]
func (h *ChatHandler) Create(c echo.Context) error {
	accountID, err := actorID(c)
	if err != nil {
		return err
	}

	var req participantsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	detail, err := h.chats.Create(c.Request().Context(), accountID, identities(req.Participants))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toChatDetailResponse(detail))
}

// Get returns a chat with its participants and latest messages.
//
// @Summary      Get a chat
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Chat id"
// @Success      200  {object}  chatDetailResponse
// @Failure      403  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Router       /chats/{id} [get]
func (h *ChatHandler) Get(c echo.Context) error {
	accountID, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	detail, err := h.chats.Get(c.Request().Context(), accountID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toChatDetailResponse(detail))
}

// Update replaces the participants of a chat.
//
// @Summary      Update chat participants
// @Tags         chats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                  true  "Chat id"
// @Param        body  body      participantsRequest  true  "Participants"
// @Success      200   {object}  chatDetailResponse
// @Failure      403   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Router       /chats/{id} [patch]
func (h *ChatHandler) Update(c echo.Context) error {
	accountID, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req participantsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	detail, err := h.chats.UpdateParticipants(c.Request().Context(), accountID, id, identities(req.Participants))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toChatDetailResponse(detail))
}

// Delete removes a chat and its messages.
//
// @Summary      Delete a chat
// @Tags         chats
// @Security     BearerAuth
// @Param        id   path  int  true  "Chat id"
// @Success      204
// @Failure      403  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Router       /chats/{id} [delete]
func (h *ChatHandler) Delete(c echo.Context) error {
	accountID, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.chats.Delete(c.Request().Context(), accountID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Messages returns the latest messages of a chat, newest first.
//
// @Summary      List chat messages
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      int  true   "Chat id"
// @Param        limit  query     int  false  "Number of messages (default 10)"
// @Success      200    {array}   messageResponse
// @Failure      403    {object}  errorBody
// @Router       /chats/{id}/messages [get]
func (h *ChatHandler) Messages(c echo.Context) error {
	accountID, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var limit int
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	msgs, err := h.chats.Messages(c.Request().Context(), accountID, id, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMessageResponses(msgs))
}

// PostMessage sends a message to a chat as the caller.
//
// @Summary      Post a chat message
// @Tags         chats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                 true  "Chat id"
// @Param        body  body      postMessageRequest  true  "Message"
// @Success      201   {object}  messageResponse
// @Failure      403   {object}  errorBody
// @Router       /chats/{id}/messages [post]
func (h *ChatHandler) PostMessage(c echo.Context) error {
	accountID, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req postMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	msg, err := h.chats.PostMessage(c.Request().Context(), accountID, id, req.Content)
	if err != nil {
		return err
	}

	metrics.MessagesPostedTotal.Inc()
	return c.JSON(http.StatusCreated, toMessageResponses([]*domain.Message{msg})[0])
}
