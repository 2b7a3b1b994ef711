package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Kalind02/food-ordering-api/internal/domain"
)

// ContactReceiver is the minimal interface needed to accept a contact
// message.
type ContactReceiver interface {
	SubmitMessage(ctx context.Context, name, email, message string) (domain.ContactMessage, error)
}

// HandleSubmitContact returns an HTTP handler for the contact form.
func HandleSubmitContact(svc ContactReceiver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contactRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		msg, err := svc.SubmitMessage(r.Context(), req.Name, req.Email, req.Message)
		if err != nil {
			if errors.Is(err, domain.ErrContactFieldsRequired) {
				writeError(w, http.StatusBadRequest, codeContactFields, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		writeJSON(w, http.StatusCreated, contactResponse{
			Message:   "Message received. We'll get back to you soon!",
			ContactID: msg.ID,
		})
	}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type contactResponse struct {
	Message   string `json:"message"`
	ContactID string `json:"contactId"`
}
