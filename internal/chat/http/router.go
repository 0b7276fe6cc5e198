package http

import (
	"net/http"
	"time"

	"github.com/AlibekovAA/fadechat/internal/chat/service"
	commonhttp "github.com/AlibekovAA/fadechat/internal/common/http"
	"github.com/AlibekovAA/fadechat/internal/common/httpmetrics"
	"github.com/AlibekovAA/fadechat/internal/common/logger"
	"github.com/AlibekovAA/fadechat/internal/common/session"
)

const (
	prefixSend       = "Error sending message. "
	prefixList       = "Error retrieving messages. "
	prefixView       = "Error fetching message. "
	prefixRecipients = "Error retrieving recipients. "
)

// sendRequest.RecipientSelect is filled by browsers that post the
// recipient select element under its own name.
type sendRequest struct {
	Recipient       string `json:"recipient" form:"recipient" validate:"max=64"`
	RecipientSelect string `json:"-" form:"recipient-select" validate:"max=64"`
	Message         string `json:"message" form:"message" validate:"max=4096"`
}

type viewRequest struct {
	MessageID string `json:"messageId" form:"message-id" validate:"max=64"`
}

type messageSummary struct {
	MessageID string    `json:"messageId"`
	Sender    string    `json:"sender"`
	SentAt    time.Time `json:"sentAt"`
}

type Handler struct {
	chat   *service.Coordinator
	errors *commonhttp.ErrorHandler
	log    *logger.Logger
}

func NewHandler(
	chat *service.Coordinator,
	cookies *session.Cookies,
	requestTimeout time.Duration,
	log *logger.Logger,
) http.Handler {
	h := &Handler{
		chat:   chat,
		errors: commonhttp.NewErrorHandler(log),
		log:    log,
	}

	withSession := cookies.Middleware(log)
	mux := http.NewServeMux()
	post := func(path string, fn http.HandlerFunc) {
		httpmetrics.RegisterRoute(path)
		handler := commonhttp.RequireMethod(http.MethodPost)(commonhttp.WithTimeout(requestTimeout)(fn))
		mux.Handle(path, withSession(handler))
	}

	httpmetrics.RegisterRoute("/health")
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	post("/api/chat/send-message", h.sendMessage)
	post("/api/chat/list-messages", h.listMessages)
	post("/api/chat/view-message", h.viewMessage)
	post("/api/chat/recipients", h.recipients)
	return mux
}

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := commonhttp.DecodeRequest(r, &req); err != nil {
		h.errors.HandleOperationError(w, r, prefixSend, err)
		return
	}

	recipient := req.Recipient
	if recipient == "" {
		recipient = req.RecipientSelect
	}

	msg, err := h.chat.Send(r.Context(), session.FromContext(r.Context()), recipient, req.Message)
	if err != nil {
		h.errors.HandleOperationError(w, r, prefixSend, err)
		return
	}

	commonhttp.WriteSuccess(w, "Message sent successfully to "+msg.Recipient+".", map[string]any{
		"messageId": string(msg.ID),
	})
}

func (h *Handler) listMessages(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.chat.ListUnread(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		h.errors.HandleOperationError(w, r, prefixList, err)
		return
	}

	messages := make([]messageSummary, 0, len(summaries))
	for _, s := range summaries {
		messages = append(messages, messageSummary{
			MessageID: string(s.ID),
			Sender:    s.Sender,
			SentAt:    s.CreatedAt,
		})
	}

	message := "Messages retrieved."
	if len(messages) == 0 {
		message = "No unread messages."
	}
	commonhttp.WriteSuccess(w, message, map[string]any{"messages": messages})
}

func (h *Handler) viewMessage(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := commonhttp.DecodeRequest(r, &req); err != nil {
		h.errors.HandleOperationError(w, r, prefixView, err)
		return
	}

	result, err := h.chat.View(r.Context(), session.FromContext(r.Context()), req.MessageID)
	if err != nil {
		h.errors.HandleOperationError(w, r, prefixView, err)
		return
	}

	commonhttp.WriteSuccess(w, result.Content, map[string]any{
		"messageId": string(result.ID),
		"sender":    result.Sender,
		"content":   result.Content,
		"fadeMs":    result.Fade.Milliseconds(),
	})
}

func (h *Handler) recipients(w http.ResponseWriter, r *http.Request) {
	recipients, err := h.chat.Recipients(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		h.errors.HandleOperationError(w, r, prefixRecipients, err)
		return
	}

	commonhttp.WriteSuccess(w, "Eligible recipients retrieved.", map[string]any{
		"recipients": recipients,
	})
}
