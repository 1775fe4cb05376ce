package response

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/policy"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/service"
	"github.com/go-chi/render"
)

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes that are not policy reasons.
type ErrCode string

const (
	BAD_REQUEST    ErrCode = "BAD_REQUEST"
	UNAUTHORIZED   ErrCode = "UNAUTHORIZED"
	FORBIDDEN      ErrCode = "FORBIDDEN"
	NOT_FOUND      ErrCode = "NOT_FOUND"
	FAILED_REQUEST ErrCode = "REQUEST_FAILED"
)

// Messages are shown to end users as-is.
var Messages = map[policy.Reason]string{
	policy.ReasonTooEarlyInWeek:       "Agendamentos liberados apenas a partir de segunda-feira às 09:10.",
	policy.ReasonSlotInPast:           "Não é possível agendar um horário que já passou.",
	policy.ReasonCooldownActive:       "Você só pode agendar novamente após 15 dias do último atendimento.",
	policy.ReasonSlotUnavailable:      "Horário indisponível.",
	policy.ReasonAlreadyBooked:        "Este horário já foi agendado por outra pessoa.",
	policy.ReasonOutsideAllowedWindow: "Horário fora do expediente permitido.",
	policy.ReasonBookingNotActive:     "Este agendamento não está mais ativo.",
	policy.ReasonCancelTooLate:        "O cancelamento deve ser feito com pelo menos 30 minutos de antecedência.",
	policy.ReasonSlotHasActiveBooking: "Existe agendamento ativo neste horário.",
}

// SetLimits rewrites the messages that quote configured limits. Call it
// before serving.
func SetLimits(releaseTime model.TimeOfDay, cooldownDays int, cancelLead time.Duration) {
	Messages[policy.ReasonTooEarlyInWeek] = fmt.Sprintf(
		"Agendamentos liberados apenas a partir de segunda-feira às %s.", releaseTime)
	Messages[policy.ReasonCooldownActive] = fmt.Sprintf(
		"Você só pode agendar novamente após %s do último atendimento.", plural(cooldownDays, "dia", "dias"))
	Messages[policy.ReasonCancelTooLate] = fmt.Sprintf(
		"O cancelamento deve ser feito com pelo menos %s de antecedência.", plural(int(cancelLead/time.Minute), "minuto", "minutos"))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}

// Reject renders a policy rejection with its user-facing message.
func Reject(reason policy.Reason) Response {
	msg, ok := Messages[reason]
	if !ok {
		msg = string(reason)
	}
	return Error(string(reason), msg)
}

// FromError maps a service error to an HTTP status and body.
func FromError(err error) (int, Response) {
	if reason, ok := policy.ReasonOf(err); ok {
		return ReasonStatus(reason), Reject(reason)
	}

	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest, Error(string(BAD_REQUEST), err.Error())
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, Error(string(FORBIDDEN), "operação não permitida")
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, Error(string(NOT_FOUND), "recurso não encontrado")
	default:
		return http.StatusInternalServerError, Error(string(FAILED_REQUEST), "falha ao processar a requisição")
	}
}

// ReasonStatus is 409 for contention on a slot, 422 for rule violations.
func ReasonStatus(reason policy.Reason) int {
	switch reason {
	case policy.ReasonSlotUnavailable, policy.ReasonAlreadyBooked, policy.ReasonSlotHasActiveBooking:
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

// Render writes err to w and returns the status it used.
func Render(w http.ResponseWriter, r *http.Request, err error) int {
	status, body := FromError(err)
	render.Status(r, status)
	render.JSON(w, r, body)
	return status
}

func BadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, Error(string(BAD_REQUEST), msg))
}
