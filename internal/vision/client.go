package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"yamor-backend/config"
)

const medicinePrompt = `คุณคือเภสัชกรผู้เชี่ยวชาญ ช่วยดูรูปซองยาหรือขวดยานี้ แล้วดึงข้อมูลสำคัญออกมาเป็น JSON format ดังนี้:
{
    "medicine_name": "ชื่อยา (ภาษาอังกฤษหรือไทย)",
    "dosage": "ปริมาณการทาน (เช่น 1 เม็ด, 2 ช้อนชา)",
    "frequency": ["morning", "noon", "evening", "bedtime"],
    "indication": "สรรพคุณ (รักษาอะไร - สั้นๆ)",
    "warning": "คำเตือนสำคัญ (ถ้ามี)"
}
frequency ต้องเป็น Array ของ string: "morning", "noon", "evening", "bedtime" เท่านั้น
ตอบกลับเฉพาะ JSON เท่านั้น ไม่ต้องมี markdown block`

const appointmentPrompt = `คุณคือผู้ช่วยอัจฉริยะวิเคราะห์ใบนัดแพทย์ ดูรูปภาพนี้แล้วดึงข้อมูลออกมาเป็น JSON format ดังนี้:
{
    "hospital_name": "ชื่อโรงพยาบาล (ถ้ามี)",
    "doctor_name": "ชื่อแพทย์ (ถ้ามี)",
    "appointment_date": "YYYY-MM-DD (แปลงจาก พ.ศ. เป็น ค.ศ. ให้ถูกต้อง - ลบ 543)",
    "appointment_time": "HH:MM (24-hour format)",
    "note": "หมายเหตุเพิ่มเติม หรือ สิ่งที่ต้องเตรียมตัว (ถ้ามี)"
}
ถ้าไม่เจอข้อมูล ให้ใส่ null
ตอบกลับเฉพาะ JSON เท่านั้น ไม่ต้องมี markdown block`

// Attempt records why one candidate model failed.
type Attempt struct {
	Model  string `json:"model"`
	Reason string `json:"reason"`
}

// ExtractionError is returned when every candidate model failed. It carries
// the per-model reasons so backend or credential problems stay diagnosable.
type ExtractionError struct {
	Attempts []Attempt
}

func (e *ExtractionError) Error() string {
	reasons := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		reasons[i] = fmt.Sprintf("%s: %s", a.Model, a.Reason)
	}
	return "all extraction backends failed: " + strings.Join(reasons, "; ")
}

// Client extracts structured data from label and slip images by calling a
// multi-modal completion backend, falling through an ordered candidate
// model list.
type Client struct {
	cfg    *config.VisionConfig
	client *http.Client
}

// NewClient creates an extraction client from the vision configuration.
func NewClient(cfg *config.VisionConfig) *Client {
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.AttemptTimeout},
	}
}

// Ready reports whether an API key is configured.
func (c *Client) Ready() bool {
	return c.cfg.APIKey != ""
}

// ExtractMedicineLabel reads a medicine label image into a draft record.
func (c *Client) ExtractMedicineLabel(ctx context.Context, image []byte, mimeType string) (*MedicineDraft, error) {
	var draft MedicineDraft
	if err := c.extract(ctx, medicinePrompt, image, mimeType, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// ExtractAppointmentSlip reads an appointment slip image into a draft
// record. Date and time are normalized; unparseable values become empty so
// the caller can apply its own defaults.
func (c *Client) ExtractAppointmentSlip(ctx context.Context, image []byte, mimeType string, buddhist bool) (*AppointmentDraft, error) {
	var draft AppointmentDraft
	if err := c.extract(ctx, appointmentPrompt, image, mimeType, &draft); err != nil {
		return nil, err
	}
	draft.AppointmentDate = NormalizeDate(draft.AppointmentDate, buddhist)
	draft.AppointmentTime = NormalizeTime(draft.AppointmentTime)
	return &draft, nil
}

// extract tries each candidate model in order and stops at the first
// parseable response. There are no retries beyond the candidate list.
func (c *Client) extract(ctx context.Context, prompt string, image []byte, mimeType string, out any) error {
	if !c.Ready() {
		return fmt.Errorf("vision api key is not configured")
	}

	var attempts []Attempt
	for _, modelName := range c.cfg.Models {
		text, err := c.generate(ctx, modelName, prompt, image, mimeType)
		if err != nil {
			attempts = append(attempts, Attempt{Model: modelName, Reason: err.Error()})
			continue
		}

		cleaned := stripCodeFence(text)
		if err := json.Unmarshal([]byte(cleaned), out); err != nil {
			attempts = append(attempts, Attempt{Model: modelName, Reason: fmt.Sprintf("unparseable response: %v", err)})
			continue
		}
		return nil
	}
	return &ExtractionError{Attempts: attempts}
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generatePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// generate issues one completion request against a single model, bounded by
// the per-attempt timeout.
func (c *Client) generate(ctx context.Context, modelName, prompt string, image []byte, mimeType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()

	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	reqBody := generateRequest{
		Contents: []generateContent{{
			Parts: []generatePart{
				{Text: prompt},
				{InlineData: &inlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.cfg.BaseURL, modelName, url.QueryEscape(c.cfg.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal backend response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if genResp.Error != nil {
			return "", fmt.Errorf("backend returned status %d: %s", resp.StatusCode, genResp.Error.Message)
		}
		return "", fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("backend returned no candidates")
	}
	return genResp.Candidates[0].Content.Parts[0].Text, nil
}

type listModelsResponse struct {
	Models []struct {
		Name                       string   `json:"name"`
		SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
	} `json:"models"`
}

// ListModels enumerates the models available to the configured credentials
// that support content generation. Best effort, for diagnostics only.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	if !c.Ready() {
		return nil, fmt.Errorf("vision api key is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/models?key=%s", c.cfg.BaseURL, url.QueryEscape(c.cfg.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	var listResp listModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model list: %w", err)
	}

	var names []string
	for _, m := range listResp.Models {
		for _, method := range m.SupportedGenerationMethods {
			if method == "generateContent" {
				names = append(names, strings.TrimPrefix(m.Name, "models/"))
				break
			}
		}
	}
	return names, nil
}
