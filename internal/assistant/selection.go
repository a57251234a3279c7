package assistant

import (
	"context"
	"strconv"
	"strings"

	"github.com/farabiclinic/ai-receptionist/internal/clinicapi"
)

// SelectionMode says which step of the clinic/doctor disambiguation flow a
// session is in. Exactly one mode holds at a time and the flow only ever
// advances Idle -> AwaitingClinic -> AwaitingDoctor -> Idle.
type SelectionMode string

const (
	SelectionIdle           SelectionMode = "idle"
	SelectionAwaitingClinic SelectionMode = "awaiting_clinic"
	SelectionAwaitingDoctor SelectionMode = "awaiting_doctor"
)

// SelectionState is the sub-dialogue's tagged state. Clinics is populated
// only while awaiting a clinic choice, Doctors and ClinicCode only while
// awaiting a doctor choice.
type SelectionState struct {
	Mode       SelectionMode         `json:"mode"`
	Clinics    []clinicapi.NamedCode `json:"clinics,omitempty"`
	ClinicCode string                `json:"clinic_code,omitempty"`
	Doctors    []clinicapi.NamedCode `json:"doctors,omitempty"`
}

// Active reports whether the sub-dialogue currently owns turn handling.
func (s SelectionState) Active() bool {
	return s.Mode == SelectionAwaitingClinic || s.Mode == SelectionAwaitingDoctor
}

func (s *SelectionState) reset() {
	*s = SelectionState{Mode: SelectionIdle}
}

// StartClinicSelection opens the disambiguation flow: it lists the clinics
// and, when at least one exists, parks the session on a numbered clinic
// prompt. On failure the session stays out of selection entirely.
func (e *Engine) StartClinicSelection(ctx context.Context, session *Session) string {
	result := e.backend.GetClinics(ctx)
	if !result.Success || len(result.Clinics) == 0 {
		return noClinicsMessage(session.Language)
	}

	session.Selection = SelectionState{
		Mode:    SelectionAwaitingClinic,
		Clinics: result.Clinics,
	}
	return clinicListPrompt(session.Language, result.Clinics)
}

// handleClinicChoice consumes one turn while awaiting a clinic number. Any
// invalid input re-prompts without touching the state.
func (e *Engine) handleClinicChoice(ctx context.Context, session *Session, input string) string {
	index, msg := parseChoice(session.Language, input, len(session.Selection.Clinics))
	if msg != "" {
		return msg
	}

	clinic := session.Selection.Clinics[index-1]
	doctors := e.backend.GetDoctors(ctx, clinic.Code)
	if !doctors.Success || len(doctors.Doctors) == 0 {
		session.Selection.reset()
		return noDoctorsMessage(session.Language, clinic.Name)
	}

	session.Selection = SelectionState{
		Mode:       SelectionAwaitingDoctor,
		ClinicCode: clinic.Code,
		Doctors:    doctors.Doctors,
	}
	return doctorListPrompt(session.Language, clinic.Name, doctors.Doctors)
}

// handleDoctorChoice consumes one turn while awaiting a doctor number. A
// valid choice resets the whole selection state; the confirmation asks for a
// date and the chosen codes are re-collected by the model on later turns.
func (e *Engine) handleDoctorChoice(session *Session, input string) string {
	index, msg := parseChoice(session.Language, input, len(session.Selection.Doctors))
	if msg != "" {
		return msg
	}

	doctor := session.Selection.Doctors[index-1]
	session.Selection.reset()
	return doctorChosenMessage(session.Language, doctor.Name)
}

// parseChoice parses a 1-based list choice. It returns either a valid index
// or the re-prompt message to send back.
func parseChoice(lang Language, input string, length int) (int, string) {
	index, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, choiceNotANumberMessage(lang)
	}
	if index < 1 || index > length {
		return 0, choiceOutOfRangeMessage(lang)
	}
	return index, ""
}
