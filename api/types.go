// Package api holds the JSON wire types exchanged between the survey server
// and its clients.
package api

// QuestionKind tells how a question is answered.
type QuestionKind string

const (
	KindChoice QuestionKind = "choice"
	KindRating QuestionKind = "rating"
)

// DefaultTheme holds the gradient colors used where a survey leaves one
// unset.
var DefaultTheme = [3]string{"#f8fafc", "#eef2ff", "#F3F4F6"}

// RatingLabels are the choice texts of a rating question, in display order.
var RatingLabels = []string{"1", "2", "3", "4", "5"}

// Valid reports whether k is a known kind.
func (k QuestionKind) Valid() bool {
	return k == KindChoice || k == KindRating
}

// IsRatingLabel reports whether text is one of RatingLabels.
func IsRatingLabel(text string) bool {
	for _, l := range RatingLabels {
		if l == text {
			return true
		}
	}
	return false
}

type Choice struct {
	ID         uint   `json:"id"`
	QuestionID uint   `json:"question,omitempty"`
	ChoiceText string `json:"choice_text"`
	Votes      int    `json:"votes"`
}

type Question struct {
	ID           uint         `json:"id"`
	SurveyID     uint         `json:"survey,omitempty"`
	QuestionText string       `json:"question_text"`
	Kind         QuestionKind `json:"kind,omitempty"`
	Choices      []Choice     `json:"choices"`
}

type Survey struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AccessCode  string     `json:"access_code"`
	IsActive    bool       `json:"is_active"`
	Color1      string     `json:"color_1,omitempty"`
	Color2      string     `json:"color_2,omitempty"`
	Color3      string     `json:"color_3,omitempty"`
	Questions   []Question `json:"questions"`
}

type Profile struct {
	Username        string  `json:"username"`
	Avatar          *string `json:"avatar"`
	BackgroundImage *string `json:"background_image"`
	Color1          string  `json:"color_1"`
	Color2          string  `json:"color_2"`
	Color3          string  `json:"color_3"`
}

// Requests

type Credentials struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	RecaptchaToken string `json:"recaptcha_token,omitempty"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type CreateSurveyRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	IsActive       bool   `json:"is_active"`
	RecaptchaToken string `json:"recaptcha_token,omitempty"`
	Color1         string `json:"color_1,omitempty"`
	Color2         string `json:"color_2,omitempty"`
	Color3         string `json:"color_3,omitempty"`
}

// UpdateSurveyRequest is a partial update; nil fields are left untouched.
type UpdateSurveyRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	Color1      *string `json:"color_1,omitempty"`
	Color2      *string `json:"color_2,omitempty"`
	Color3      *string `json:"color_3,omitempty"`
}

type CreateQuestionRequest struct {
	SurveyID     uint         `json:"survey"`
	QuestionText string       `json:"question_text"`
	Kind         QuestionKind `json:"kind,omitempty"`
}

type UpdateQuestionRequest struct {
	SurveyID     *uint         `json:"survey,omitempty"`
	QuestionText *string       `json:"question_text,omitempty"`
	Kind         *QuestionKind `json:"kind,omitempty"`
}

type CreateChoiceRequest struct {
	QuestionID uint   `json:"question"`
	ChoiceText string `json:"choice_text"`
}

type UpdateChoiceRequest struct {
	QuestionID *uint   `json:"question,omitempty"`
	ChoiceText *string `json:"choice_text,omitempty"`
}

type Answer struct {
	QuestionID uint `json:"question_id"`
	ChoiceID   uint `json:"choice_id"`
}

type SubmitVotesRequest struct {
	Answers        []Answer `json:"answers"`
	RecaptchaToken string   `json:"recaptcha_token,omitempty"`
}

// Responses

type Created struct {
	ID uint `json:"id"`
}

type SubmitVotesResponse struct {
	Status string       `json:"status"`
	Counts map[uint]int `json:"counts"`
}

type VoteResponse struct {
	Status string `json:"status"`
	Votes  int    `json:"votes"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Message          string `json:"message,omitempty"`
	Error            string `json:"error,omitempty"`
	MissingQuestions []uint `json:"missing_questions,omitempty"`
}
