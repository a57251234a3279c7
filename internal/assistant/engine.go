package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/farabiclinic/ai-receptionist/internal/arabic"
	"github.com/farabiclinic/ai-receptionist/internal/clinicapi"
	"github.com/farabiclinic/ai-receptionist/internal/extract"
	"github.com/farabiclinic/ai-receptionist/internal/observability/metrics"
	"github.com/farabiclinic/ai-receptionist/pkg/logging"
)

var engineTracer = otel.Tracer("receptionist.internal.assistant")

// chatClient is the slice of the OpenAI client the engine needs. Tests
// substitute scripted implementations.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Backend is the clinic system surface the tools dispatch into. Operations
// report failures inside their result payloads, never as Go errors, so a
// dead backend still yields a well-formed tool result for the model.
type Backend interface {
	GetClinics(ctx context.Context) clinicapi.ClinicsResult
	GetDoctors(ctx context.Context, clinicCode string) clinicapi.DoctorsResult
	CheckPatientExists(ctx context.Context, mobileNumber string) clinicapi.PatientResult
	GetPatientAppointments(ctx context.Context, mobileNumber string) clinicapi.AppointmentsResult
	CheckDoctorAvailability(ctx context.Context, doctorCode, date string) clinicapi.AvailabilityResult
	BookAppointment(ctx context.Context, req clinicapi.BookingRequest) clinicapi.BookingResult
	CancelAppointment(ctx context.Context, appointmentID string) clinicapi.CancellationResult
	RegisterPatient(ctx context.Context, req clinicapi.RegistrationRequest) clinicapi.RegistrationResult
}

// Engine runs one conversation turn at a time: selection short-circuit,
// model call with the tool registry, tool execution with argument
// back-filling, follow-up synthesis, then localization and speech.
type Engine struct {
	client  chatClient
	backend Backend
	speech  Synthesizer
	metrics *metrics.ConversationMetrics
	model   string
	logger  *logging.Logger
	now     func() time.Time
}

// EngineOption customizes optional engine collaborators.
type EngineOption func(*Engine)

// WithSynthesizer attaches a speech backend; replies are spoken after
// localization.
func WithSynthesizer(s Synthesizer) EngineOption {
	return func(e *Engine) { e.speech = s }
}

// WithMetrics attaches conversation metrics.
func WithMetrics(m *metrics.ConversationMetrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the clock used for relative-date extraction.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func NewEngine(client chatClient, backend Backend, model string, logger *logging.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	e := &Engine{
		client:  client,
		backend: backend,
		model:   model,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HandleTurn processes one inbound message for the session and returns the
// reply text. The caller holds the session's turn lock. A non-nil error
// means the language model was unreachable and no reply was produced; the
// transport layer substitutes the defined fallback message.
func (e *Engine) HandleTurn(ctx context.Context, session *Session, text string, override *Language) (string, error) {
	ctx, span := engineTracer.Start(ctx, "assistant.handle_turn")
	defer span.End()

	if override != nil {
		session.SetLanguage(*override)
	}
	lang := session.Language
	span.SetAttributes(attribute.String("conversation.language", string(lang)))

	// The selection sub-dialogue owns the turn entirely while active. The
	// model is never consulted and the raw input is not transcribed.
	switch session.Selection.Mode {
	case SelectionAwaitingClinic:
		reply := e.handleClinicChoice(ctx, session, text)
		e.metrics.ObserveTurn(string(lang), "selection")
		return e.deliver(ctx, session, reply, true), nil
	case SelectionAwaitingDoctor:
		reply := e.handleDoctorChoice(session, text)
		e.metrics.ObserveTurn(string(lang), "selection")
		return e.deliver(ctx, session, reply, true), nil
	}

	session.Transcript = append(session.Transcript, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: languageDirective(lang, text),
	})

	started := e.now()
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:      e.model,
		Messages:   session.Transcript,
		Tools:      toolRegistry,
		ToolChoice: "auto",
	})
	e.metrics.ObserveModelLatency("tools", time.Since(started).Seconds())
	if err != nil {
		return "", fmt.Errorf("assistant: chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("assistant: chat completion returned no choices")
	}
	msg := resp.Choices[0].Message

	// The assistant turn carrying the tool calls joins the transcript
	// before any tool runs, so the tool-result turns that follow always
	// reference a preceding call.
	session.Transcript = append(session.Transcript, msg)

	reply := msg.Content
	if len(msg.ToolCalls) > 0 {
		for _, call := range msg.ToolCalls {
			result := e.executeToolCall(ctx, call, text)
			session.Transcript = append(session.Transcript, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Content:    result,
			})
		}

		started = e.now()
		followUp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    e.model,
			Messages: session.Transcript,
		})
		e.metrics.ObserveModelLatency("synthesis", time.Since(started).Seconds())
		if err != nil {
			return "", fmt.Errorf("assistant: follow-up completion failed: %w", err)
		}
		if len(followUp.Choices) == 0 {
			return "", fmt.Errorf("assistant: follow-up completion returned no choices")
		}
		reply = followUp.Choices[0].Message.Content
		e.metrics.ObserveTurn(string(lang), "model")
		return e.deliver(ctx, session, reply, true), nil
	}

	e.metrics.ObserveTurn(string(lang), "model")
	// msg is already on the transcript, content included.
	return e.deliver(ctx, session, reply, false), nil
}

// deliver finishes a turn: optionally appends the reply as an assistant
// turn, localizes it for Arabic sessions, and hands it to the synthesizer.
// The transcript keeps the un-localized form the model produced.
func (e *Engine) deliver(ctx context.Context, session *Session, reply string, appendTurn bool) string {
	if appendTurn {
		session.Transcript = append(session.Transcript, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: reply,
		})
	}
	out := reply
	if session.Language == LanguageArabic {
		out = arabic.Localize(reply)
	}
	if e.speech != nil {
		if err := e.speech.Speak(ctx, out, session.Language); err != nil {
			e.logger.Error("speech synthesis failed", "session_id", session.ID, "error", err)
		}
	}
	return out
}

// executeToolCall runs a single model-requested tool and returns its JSON
// result. Arguments the model omitted are back-filled from the raw inbound
// text where an extractor exists for them.
func (e *Engine) executeToolCall(ctx context.Context, call openai.ToolCall, inbound string) string {
	args := parseArguments(call.Function.Arguments)
	kind := toolKindFor(call.Function.Name)
	status := "ok"

	var result any
	switch kind {
	case toolGetClinics:
		result = e.backend.GetClinics(ctx)
	case toolGetDoctors:
		result = e.backend.GetDoctors(ctx, args.str("clinic_code"))
	case toolCheckPatientExists:
		mobile := args.str("mobile_number")
		if mobile == "" {
			if v, ok := extract.Phone(inbound); ok {
				mobile = v
			}
		}
		result = e.backend.CheckPatientExists(ctx, mobile)
	case toolGetPatientAppointments:
		result = e.backend.GetPatientAppointments(ctx, args.str("mobile_number"))
	case toolCheckDoctorAvailability:
		date := args.str("date")
		if date == "" {
			if v, ok := extract.Date(inbound, e.now()); ok {
				date = v
			}
		}
		result = e.backend.CheckDoctorAvailability(ctx, args.str("doctor_code"), date)
	case toolBookAppointment:
		req := clinicapi.BookingRequest{
			AppDate:        args.str("app_date"),
			SlotID:         args.str("slot_id"),
			PatCode:        args.str("pat_code"),
			PatNameAr:      args.str("pat_nameAr"),
			IdentityNo:     args.str("identity_no"),
			MobileNo:       args.str("mobile_no"),
			PatAge:         args.str("pat_age"),
			DrCode:         args.str("dr_code"),
			DrCodeText:     args.str("dr_codeText"),
			ClinicDeptCode: args.str("cinicDept_code"),
		}
		if req.AppDate == "" {
			if v, ok := extract.Date(inbound, e.now()); ok {
				req.AppDate = v
			}
		}
		if req.SlotID == "" {
			if v, ok := extract.TimeSlot(inbound); ok {
				req.SlotID = v
			}
		}
		result = e.backend.BookAppointment(ctx, req)
	case toolCancelAppointment:
		id := args.str("appo_id")
		if id == "" {
			if v, ok := extract.AppointmentID(inbound); ok {
				id = v
			}
		}
		result = e.backend.CancelAppointment(ctx, id)
	case toolRegisterPatient:
		req := clinicapi.RegistrationRequest{
			FirstNameAr:  args.str("patient_firstName_ar"),
			LastNameAr:   args.str("patient_lastName_ar"),
			NameAr:       args.str("patient_name_ar"),
			FirstNameEn:  args.str("patient_firstName_en"),
			LastNameEn:   args.str("patient_lastName_en"),
			NameEn:       args.str("patient_name_en"),
			Sex:          args.str("sex"),
			BirthDate:    args.str("patient_birthDate"),
			Mobile:       args.str("patient_mobile"),
			UserName:     args.str("user_name"),
			Password:     args.str("password"),
			Phone:        args.str("patient_phone"),
			Email:        args.str("email"),
			CountryCode:  args.str("countryCode"),
			IDNumber:     args.str("id_number"),
			FatherNameAr: args.str("patient_fatherName_ar"),
			MiddleNameAr: args.str("patient_middleName_ar"),
			FatherNameEn: args.str("patient_fatherName_en"),
			MiddleNameEn: args.str("patient_middleName_en"),
			Image:        args.str("img"),
		}
		if req.Sex == "" {
			if v, ok := extract.Gender(inbound); ok {
				req.Sex = v
			}
		}
		if req.Mobile == "" {
			if v, ok := extract.Phone(inbound); ok {
				req.Mobile = v
				req.Phone = v
			}
		}
		if req.Email == "" {
			if v, ok := extract.Email(inbound); ok {
				req.Email = v
			}
		}
		result = e.backend.RegisterPatient(ctx, req)
	default:
		e.logger.Error("model requested an unknown tool", "tool", call.Function.Name)
		status = "unknown_tool"
		result = map[string]string{"error": "Unknown tool"}
	}
	e.metrics.ObserveToolCall(call.Function.Name, status)

	data, err := json.Marshal(result)
	if err != nil {
		e.logger.Error("failed to encode tool result", "tool", call.Function.Name, "error", err)
		return `{"error": "failed to encode tool result"}`
	}
	return string(data)
}

// toolArguments holds the decoded arguments of one tool call.
type toolArguments map[string]any

// parseArguments decodes the model's argument JSON. Malformed or empty
// payloads degrade to an empty set so back-filling still gets a chance.
func parseArguments(raw string) toolArguments {
	if raw == "" {
		return toolArguments{}
	}
	var args toolArguments
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return toolArguments{}
	}
	return args
}

func (a toolArguments) str(key string) string {
	if v, ok := a[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
