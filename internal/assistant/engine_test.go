package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farabiclinic/ai-receptionist/internal/clinicapi"
	"github.com/farabiclinic/ai-receptionist/pkg/logging"
)

// scriptedChatClient replays canned completions in order and records every
// request it saw.
type scriptedChatClient struct {
	responses []openai.ChatCompletionResponse
	requests  []openai.ChatCompletionRequest
	err       error
}

func (s *scriptedChatClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	if len(s.responses) == 0 {
		return openai.ChatCompletionResponse{}, errors.New("no scripted response left")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func textResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: content,
			},
		}},
	}
}

func toolCallResponse(calls ...openai.ToolCall) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role:      openai.ChatMessageRoleAssistant,
				ToolCalls: calls,
			},
		}},
	}
}

func toolCall(id, name, args string) openai.ToolCall {
	return openai.ToolCall{
		ID:   id,
		Type: openai.ToolTypeFunction,
		Function: openai.FunctionCall{
			Name:      name,
			Arguments: args,
		},
	}
}

// fakeBackend records every operation invocation and answers from canned
// results.
type fakeBackend struct {
	calls []string

	clinics      clinicapi.ClinicsResult
	doctors      clinicapi.DoctorsResult
	patient      clinicapi.PatientResult
	appointments clinicapi.AppointmentsResult
	availability clinicapi.AvailabilityResult
	booking      clinicapi.BookingResult
	cancellation clinicapi.CancellationResult
	registration clinicapi.RegistrationResult

	doctorsClinicCode  string
	patientMobile      string
	appointmentsMobile string
	availabilityDoctor string
	availabilityDate   string
	bookingReq         clinicapi.BookingRequest
	cancelledID        string
	registrationReq    clinicapi.RegistrationRequest
}

func (b *fakeBackend) GetClinics(context.Context) clinicapi.ClinicsResult {
	b.calls = append(b.calls, "get_clinics")
	return b.clinics
}

func (b *fakeBackend) GetDoctors(_ context.Context, clinicCode string) clinicapi.DoctorsResult {
	b.calls = append(b.calls, "get_doctors")
	b.doctorsClinicCode = clinicCode
	return b.doctors
}

func (b *fakeBackend) CheckPatientExists(_ context.Context, mobileNumber string) clinicapi.PatientResult {
	b.calls = append(b.calls, "check_patient_exists")
	b.patientMobile = mobileNumber
	return b.patient
}

func (b *fakeBackend) GetPatientAppointments(_ context.Context, mobileNumber string) clinicapi.AppointmentsResult {
	b.calls = append(b.calls, "get_patient_appointments")
	b.appointmentsMobile = mobileNumber
	return b.appointments
}

func (b *fakeBackend) CheckDoctorAvailability(_ context.Context, doctorCode, date string) clinicapi.AvailabilityResult {
	b.calls = append(b.calls, "check_doctor_availability")
	b.availabilityDoctor = doctorCode
	b.availabilityDate = date
	return b.availability
}

func (b *fakeBackend) BookAppointment(_ context.Context, req clinicapi.BookingRequest) clinicapi.BookingResult {
	b.calls = append(b.calls, "book_appointment")
	b.bookingReq = req
	return b.booking
}

func (b *fakeBackend) CancelAppointment(_ context.Context, appointmentID string) clinicapi.CancellationResult {
	b.calls = append(b.calls, "cancel_appointment")
	b.cancelledID = appointmentID
	return b.cancellation
}

func (b *fakeBackend) RegisterPatient(_ context.Context, req clinicapi.RegistrationRequest) clinicapi.RegistrationResult {
	b.calls = append(b.calls, "register_patient")
	b.registrationReq = req
	return b.registration
}

// recordingSynthesizer captures what the engine speaks.
type recordingSynthesizer struct {
	spoken []string
	langs  []Language
}

func (r *recordingSynthesizer) Speak(_ context.Context, text string, lang Language) error {
	r.spoken = append(r.spoken, text)
	r.langs = append(r.langs, lang)
	return nil
}

func newTestEngine(client chatClient, backend Backend, opts ...EngineOption) *Engine {
	return NewEngine(client, backend, "gpt-4o-mini", logging.New("error"), opts...)
}

func langPtr(l Language) *Language { return &l }

func TestHandleTurnPlainReply(t *testing.T) {
	chat := &scriptedChatClient{responses: []openai.ChatCompletionResponse{
		textResponse("We are open from 9 to 5."),
	}}
	backend := &fakeBackend{}
	engine := newTestEngine(chat, backend)
	session := NewSession("s1", LanguageEnglish)

	reply, err := engine.HandleTurn(context.Background(), session, "what are your hours?", nil)
	require.NoError(t, err)
	assert.Equal(t, "We are open from 9 to 5.", reply)

	require.Len(t, chat.requests, 1)
	assert.Len(t, chat.requests[0].Tools, 8)
	assert.Equal(t, "auto", chat.requests[0].ToolChoice)

	require.Len(t, session.Transcript, 3)
	assert.Equal(t, openai.ChatMessageRoleSystem, session.Transcript[0].Role)
	assert.Equal(t, "Please respond in English. The user said: what are your hours?", session.Transcript[1].Content)
	assert.Equal(t, openai.ChatMessageRoleAssistant, session.Transcript[2].Role)
	assert.Empty(t, backend.calls)
}

func TestHandleTurnToolCallsRunInOrder(t *testing.T) {
	chat := &scriptedChatClient{responses: []openai.ChatCompletionResponse{
		toolCallResponse(
			toolCall("call_1", "get_clinics", ""),
			toolCall("call_2", "get_doctors", `{"clinic_code":"SPLDRM"}`),
		),
		textResponse("Here are our clinics and doctors."),
	}}
	backend := &fakeBackend{
		clinics: clinicapi.ClinicsResult{Success: true, Clinics: []clinicapi.NamedCode{{Code: "SPLDRM", Name: "Dental"}}},
		doctors: clinicapi.DoctorsResult{Success: true, Doctors: []clinicapi.NamedCode{{Code: "14", Name: "Dr. Salem"}}},
	}
	engine := newTestEngine(chat, backend)
	session := NewSession("s1", LanguageEnglish)

	reply, err := engine.HandleTurn(context.Background(), session, "show me the doctors", nil)
	require.NoError(t, err)
	assert.Equal(t, "Here are our clinics and doctors.", reply)
	assert.Equal(t, []string{"get_clinics", "get_doctors"}, backend.calls)
	assert.Equal(t, "SPLDRM", backend.doctorsClinicCode)

	// system, user, assistant(tool calls), tool, tool, assistant
	require.Len(t, session.Transcript, 6)
	assert.Len(t, session.Transcript[2].ToolCalls, 2)
	assert.Equal(t, openai.ChatMessageRoleTool, session.Transcript[3].Role)
	assert.Equal(t, "call_1", session.Transcript[3].ToolCallID)
	assert.Equal(t, openai.ChatMessageRoleTool, session.Transcript[4].Role)
	assert.Equal(t, "call_2", session.Transcript[4].ToolCallID)
	assert.Equal(t, openai.ChatMessageRoleAssistant, session.Transcript[5].Role)

	var first clinicapi.ClinicsResult
	require.NoError(t, json.Unmarshal([]byte(session.Transcript[3].Content), &first))
	assert.True(t, first.Success)

	// The synthesis call gets the tool results but no tool registry.
	require.Len(t, chat.requests, 2)
	assert.Empty(t, chat.requests[1].Tools)
	assert.Len(t, chat.requests[1].Messages, 5)
}

func TestHandleTurnBackfillsAvailabilityDate(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	chat := &scriptedChatClient{responses: []openai.ChatCompletionResponse{
		toolCallResponse(toolCall("call_1", "check_doctor_availability", `{"doctor_code":"14"}`)),
		textResponse("Dr. Salem has 2 slots tomorrow."),
	}}
	backend := &fakeBackend{availability: clinicapi.AvailabilityResult{Available: true}}
	engine := newTestEngine(chat, backend, WithClock(func() time.Time { return now }))
	session := NewSession("s1", LanguageEnglish)

	_, err := engine.HandleTurn(context.Background(), session, "is doctor 14 free tomorrow?", nil)
	require.NoError(t, err)
	assert.Equal(t, "14", backend.availabilityDoctor)
	assert.Equal(t, "2025-03-11", backend.availabilityDate)
}

func TestHandleTurnBackfillsBookingFields(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	chat := &scriptedChatClient{responses: []openai.ChatCompletionResponse{
		toolCallResponse(toolCall("call_1", "book_appointment",
			`{"pat_code":"340585","pat_nameAr":"يوسف","identity_no":"1","mobile_no":"0500876733","dr_code":"36","cinicDept_code":"SPLOPT"}`)),
		textResponse("Booked."),
	}}
	backend := &fakeBackend{booking: clinicapi.BookingResult{Success: true}}
	engine := newTestEngine(chat, backend, WithClock(func() time.Time { return now }))
	session := NewSession("s1", LanguageEnglish)

	_, err := engine.HandleTurn(context.Background(), session, "book me tomorrow at 08:00", nil)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-11", backend.bookingReq.AppDate)
	assert.Equal(t, "08:00:00-08:15:00", backend.bookingReq.SlotID)
	assert.Equal(t, "340585", backend.bookingReq.PatCode)
}

func TestHandleTurnBackfillsCancellationID(t *testing.T) {
	chat := &scriptedChatClient{responses: []openai.ChatCompletionResponse{
		toolCallResponse(toolCall("call_1", "cancel_appointment", `{}`)),
		textResponse("Cancelled."),
	}}
	backend := &fakeBackend{cancellation: clinicapi.CancellationResult{Success: true}}
	engine := newTestEngine(chat, backend)
	session := NewSession("s1", LanguageEnglish)

	_, err := engine.HandleTurn(context.Background(), session, "cancel appointment id 123456 please", nil)
	require.NoError(t, err)
	assert.Equal(t, "123456", backend.cancelledID)
}

func TestHandleTurnBackfillsRegistrationFields(t *testing.T) {
	chat := &scriptedChatClient{responses: []openai.ChatCompletionResponse{
		toolCallResponse(toolCall("call_1", "register_patient",
			`{"patient_firstName_ar":"سارة","patient_lastName_ar":"علي","patient_name_ar":"سارة علي","patient_firstName_en":"Sara","patient_lastName_en":"Ali","patient_name_en":"Sara Ali","patient_birthDate":"1990-01-01","user_name":"sara","password":"pw","countryCode":"001","id_number":"1089432765"}`)),
		textResponse("Registered."),
	}}
	backend := &fakeBackend{registration: clinicapi.RegistrationResult{Success: true}}
	engine := newTestEngine(chat, backend)
	session := NewSession("s1", LanguageEnglish)

	_, err := engine.HandleTurn(context.Background(), session,
		"I am a female, my number is 0501234567 and my email is sara@example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, "Female", backend.registrationReq.Sex)
	assert.Equal(t, "0501234567", backend.registrationReq.Mobile)
	assert.Equal(t, "0501234567", backend.registrationReq.Phone)
	assert.Equal(t, "sara@example.com", backend.registrationReq.Email)
}

func TestHandleTurnMalformedArgumentsStillBackfill(t *testing.T) {
	chat := &scriptedChatClient{responses: []openai.ChatCompletionResponse{
		toolCallResponse(toolCall("call_1", "check_patient_exists", `{"mobile_number":`)),
		textResponse("Found you."),
	}}
	backend := &fakeBackend{patient: clinicapi.PatientResult{Success: true, Exists: true}}
	engine := newTestEngine(chat, backend)
	session := NewSession("s1", LanguageEnglish)

	_, err := engine.HandleTurn(context.Background(), session, "my number is 0501234567", nil)
	require.NoError(t, err)
	assert.Equal(t, "0501234567", backend.patientMobile)
}

func TestHandleTurnUnknownToolNeverReachesBackend(t *testing.T) {
	chat := &scriptedChatClient{responses: []openai.ChatCompletionResponse{
		toolCallResponse(toolCall("call_1", "delete_everything", `{}`)),
		textResponse("I can't do that."),
	}}
	backend := &fakeBackend{}
	engine := newTestEngine(chat, backend)
	session := NewSession("s1", LanguageEnglish)

	reply, err := engine.HandleTurn(context.Background(), session, "do something weird", nil)
	require.NoError(t, err)
	assert.Equal(t, "I can't do that.", reply)
	assert.Empty(t, backend.calls)
	assert.JSONEq(t, `{"error":"Unknown tool"}`, session.Transcript[3].Content)
}

func TestHandleTurnModelFailure(t *testing.T) {
	chat := &scriptedChatClient{err: errors.New("connection refused")}
	engine := newTestEngine(chat, &fakeBackend{})
	session := NewSession("s1", LanguageEnglish)

	reply, err := engine.HandleTurn(context.Background(), session, "hello", nil)
	require.Error(t, err)
	assert.Empty(t, reply)
}

func TestHandleTurnLanguageOverrideReplacesSystemPrompt(t *testing.T) {
	chat := &scriptedChatClient{responses: []openai.ChatCompletionResponse{
		textResponse("أهلاً بك"),
	}}
	engine := newTestEngine(chat, &fakeBackend{})
	session := NewSession("s1", LanguageEnglish)

	_, err := engine.HandleTurn(context.Background(), session, "مرحبا", langPtr(LanguageArabic))
	require.NoError(t, err)
	assert.Equal(t, LanguageArabic, session.Language)
	assert.Equal(t, systemPromptArabic, session.Transcript[0].Content)
	assert.Contains(t, session.Transcript[1].Content, "يرجى الرد باللغة العربية")
	// Still exactly one system turn, at position 0.
	for _, msg := range session.Transcript[1:] {
		assert.NotEqual(t, openai.ChatMessageRoleSystem, msg.Role)
	}
}

func TestHandleTurnArabicAvailabilityRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	chat := &scriptedChatClient{responses: []openai.ChatCompletionResponse{
		toolCallResponse(toolCall("call_1", "check_doctor_availability", `{"doctor_code":"14"}`)),
		textResponse("Doctor 14 is available on 2025-03-11 with 2 slots."),
	}}
	backend := &fakeBackend{availability: clinicapi.AvailabilityResult{
		Available:      true,
		AvailableSlots: 2,
		Date:           "2025-03-11",
	}}
	engine := newTestEngine(chat, backend, WithClock(func() time.Time { return now }))
	session := NewSession("s1", LanguageArabic)

	reply, err := engine.HandleTurn(context.Background(), session, "checking doctor 14 availability tomorrow", nil)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-11", backend.availabilityDate)
	assert.Contains(t, reply, "٢")
	assert.NotContains(t, reply, "2")
}

func TestHandleTurnLocalizesArabicReply(t *testing.T) {
	chat := &scriptedChatClient{responses: []openai.ChatCompletionResponse{
		textResponse("Doctor is available with 2 slots at 08:30 AM"),
	}}
	speech := &recordingSynthesizer{}
	engine := newTestEngine(chat, &fakeBackend{}, WithSynthesizer(speech))
	session := NewSession("s1", LanguageArabic)

	reply, err := engine.HandleTurn(context.Background(), session, "متى الطبيب متاح؟", nil)
	require.NoError(t, err)
	assert.Contains(t, reply, "٢")
	assert.Contains(t, reply, "٠٨:٣٠ ص")
	assert.NotContains(t, reply, "slots")

	// The transcript keeps the raw model output; only the delivered text is
	// localized.
	assert.Equal(t, "Doctor is available with 2 slots at 08:30 AM", session.Transcript[2].Content)
	require.Len(t, speech.spoken, 1)
	assert.Equal(t, reply, speech.spoken[0])
	assert.Equal(t, LanguageArabic, speech.langs[0])
}
