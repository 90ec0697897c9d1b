package handler

import (
	"errors"
	"net/http"

	"github.com/portalnegocios/intake/internal/attachment"
	"github.com/portalnegocios/intake/internal/middleware"
	"github.com/portalnegocios/intake/internal/model"
)

// User-facing response messages. The form audience is Spanish-speaking;
// internal detail stays in the logs.
const (
	msgSuccess         = "Consulta enviada exitosamente. Te contactaremos pronto."
	msgValidation      = "Todos los campos obligatorios deben ser completados correctamente."
	msgFileType        = "Tipo de archivo no permitido. Solo se permiten PDF e imágenes."
	msgFileSize        = "El tamaño del archivo excede el límite permitido."
	msgSendFailed      = "Error al enviar el email de consulta. Inténtelo nuevamente más tarde."
	msgMalformedUpload = "No se pudo procesar el formulario enviado."
)

// formMemoryLimit is how much of the multipart body is held in memory
// before spilling to temp files.
const formMemoryLimit = 10 << 20 // 10 MB

// CreateConsultation handles POST /api/consultations: multipart form in,
// JSON verdict out.
func (h *Handler) CreateConsultation(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithRequestID(middleware.GetRequestID(r.Context()))

	// Cap the whole body: attachment ceiling plus slack for text fields.
	r.Body = http.MaxBytesReader(w, r.Body, h.policy.MaxSizeBytes+1<<20)

	if err := r.ParseMultipartForm(formMemoryLimit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusBadRequest, msgFileSize)
			return
		}
		log.Warn().Err(err).Str("client_ip", middleware.ClientIP(r)).Msg("malformed multipart form")
		writeError(w, http.StatusBadRequest, msgMalformedUpload)
		return
	}

	req := model.ConsultationRequest{
		FirstName:           r.FormValue("firstName"),
		LastName:            r.FormValue("lastName"),
		Email:               r.FormValue("email"),
		Phone:               r.FormValue("phone"),
		Message:             r.FormValue("message"),
		CUIT:                r.FormValue("cuit"),
		AdditionalData:      r.FormValue("additionalData"),
		HasAdditionalFields: r.FormValue("hasAdditionalFields") == "true",
	}

	// The document part is optional; its absence is not an error.
	file, header, err := r.FormFile("document")
	switch {
	case err == nil:
		defer file.Close()
		att, attErr := attachment.Process(file, header, h.policy)
		if attErr != nil {
			log.Info().Err(attErr).Msg("attachment rejected")
			writeAttachmentError(w, attErr)
			return
		}
		req.Attachment = att
	case errors.Is(err, http.ErrMissingFile):
		// No attachment. Fine.
	default:
		log.Warn().Err(err).Msg("unreadable document part")
		writeError(w, http.StatusBadRequest, msgMalformedUpload)
		return
	}

	outcome := h.dispatcher.HandleConsultation(r.Context(), req)

	switch outcome.Status {
	case model.StatusAccepted:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"message":   msgSuccess,
			"messageId": outcome.Notification.MessageID,
		})

	case model.StatusRejected:
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success":     false,
			"error":       msgValidation,
			"fieldErrors": outcome.FieldErrors,
		})

	default:
		// Transport failure: full detail is already logged by the
		// dispatcher; the client only gets a generic retry message.
		writeError(w, http.StatusInternalServerError, msgSendFailed)
	}
}

func writeAttachmentError(w http.ResponseWriter, err error) {
	var attErr *attachment.Error
	if errors.As(err, &attErr) {
		switch attErr.Kind {
		case attachment.KindUnsupportedType:
			writeError(w, http.StatusBadRequest, msgFileType)
			return
		case attachment.KindTooLarge:
			writeError(w, http.StatusBadRequest, msgFileSize)
			return
		}
	}
	writeError(w, http.StatusBadRequest, msgMalformedUpload)
}
