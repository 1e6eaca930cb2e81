package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mv4digital/chuvinha/internal/api/middleware"
	"github.com/mv4digital/chuvinha/internal/assistant"
	"github.com/mv4digital/chuvinha/internal/auth"
	"github.com/mv4digital/chuvinha/internal/llm"
)

// AssistantHandler handles the single mode-discriminated assistant endpoint.
type AssistantHandler struct {
	svc      *assistant.Assistant
	verifier *auth.Verifier
	log      zerolog.Logger
}

// NewAssistantHandler creates a new assistant handler.
func NewAssistantHandler(svc *assistant.Assistant, verifier *auth.Verifier, log zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{
		svc:      svc,
		verifier: verifier,
		log:      log,
	}
}

// requestBody is the union of both request modes; Mode discriminates.
type requestBody struct {
	Mode string `json:"mode"`

	// chat
	Message string                `json:"message"`
	History []llm.Message         `json:"history"`
	Context assistant.ChatContext `json:"context"`

	// import_suggest
	ImportKind assistant.ImportKind `json:"importKind"`
	Rows       []json.RawMessage    `json:"rows"`
}

// Handle handles POST /api/assistant. The identity credential is checked
// before the body is parsed; the role is resolved server-side and never
// trusted from the request.
func (h *AssistantHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ident, err := h.verifier.VerifyHeader(r.Header.Get("Authorization"))
	if err != nil {
		middleware.WriteError(w, http.StatusUnauthorized, "Não autorizado")
		return
	}

	var body requestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	switch body.Mode {
	case "chat":
		h.handleChat(w, r, ident, body)
	case "import_suggest":
		h.handleImportSuggest(w, r, body)
	default:
		middleware.WriteError(w, http.StatusBadRequest, "Modo inválido")
	}
}

func (h *AssistantHandler) handleChat(w http.ResponseWriter, r *http.Request, ident auth.Identity, body requestBody) {
	message := strings.TrimSpace(body.Message)
	if message == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Mensagem vazia")
		return
	}

	reply := h.svc.HandleChat(r.Context(), ident, assistant.ChatRequest{
		Message: message,
		History: body.History,
		Context: body.Context,
	})
	middleware.WriteJSON(w, http.StatusOK, reply)
}

func (h *AssistantHandler) handleImportSuggest(w http.ResponseWriter, r *http.Request, body requestBody) {
	if !body.ImportKind.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, "importKind inválido")
		return
	}
	if len(body.Rows) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Planilha vazia")
		return
	}

	suggestion, err := h.svc.SuggestImport(r.Context(), assistant.ImportRequest{
		Kind: body.ImportKind,
		Rows: body.Rows,
	})
	if err != nil {
		var modelErr *assistant.ModelJSONError
		if errors.As(err, &modelErr) {
			h.log.Warn().Err(modelErr.Err).Msg("Model returned unparseable JSON")
			middleware.WriteJSON(w, http.StatusBadGateway, map[string]string{
				"error": modelErr.Error(),
				"raw":   modelErr.Raw,
			})
			return
		}
		h.log.Warn().Err(err).Msg("Import suggestion failed")
		middleware.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error":  "IA não configurada",
			"detail": err.Error(),
		})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{"suggestion": suggestion})
}
