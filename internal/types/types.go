// Package types defines core data types and error codes shared by the ragtex packages.
package types

import "errors"

// Config 应用配置
type Config struct {
	OpenAIAPIKey  string `json:"openai_api_key" yaml:"openai_api_key"`
	OpenAIBaseURL string `json:"openai_base_url" yaml:"openai_base_url"` // OpenAI 兼容 API 的 Base URL（Ollama 使用 /v1）
	OpenAIModel   string `json:"openai_model" yaml:"openai_model"`

	Collection   string `json:"collection" yaml:"collection"`       // 向量集合名称
	ChunkSize    int    `json:"chunk_size" yaml:"chunk_size"`       // 分块大小（字符数）
	ChunkOverlap int    `json:"chunk_overlap" yaml:"chunk_overlap"` // 分块重叠
	TopK         int    `json:"top_k" yaml:"top_k"`                 // 检索返回数量
	EmbedDim     int    `json:"embed_dim" yaml:"embed_dim"`         // 向量维度
	StorePath    string `json:"store_path" yaml:"store_path"`       // bbolt 向量库路径，为空时使用内存存储

	LogLevel string `json:"log_level" yaml:"log_level"`

	// MaxAnswerBytes caps the size of a model answer handed to the math normalizer.
	MaxAnswerBytes int `json:"max_answer_bytes" yaml:"max_answer_bytes"`

	Normalizer NormalizerConfig `json:"normalizer" yaml:"normalizer"`
}

// NormalizerConfig 数学规范化配置
// Every field maps onto a mathnorm.Options threshold.
type NormalizerConfig struct {
	BareCommandMode  string `json:"bare_command_mode" yaml:"bare_command_mode"` // blanket, whitelist, off
	WrapProseIndices bool   `json:"wrap_prose_indices" yaml:"wrap_prose_indices"`

	ProseMaxWords     int `json:"prose_max_words" yaml:"prose_max_words"`
	ProseMaxWordChars int `json:"prose_max_word_chars" yaml:"prose_max_word_chars"`

	FormulaMinCommands           int `json:"formula_min_commands" yaml:"formula_min_commands"`
	FormulaMinSymbolsWithCommand int `json:"formula_min_symbols_with_command" yaml:"formula_min_symbols_with_command"`
	FormulaMinScriptGroups       int `json:"formula_min_script_groups" yaml:"formula_min_script_groups"`

	DenseMinSymbols int `json:"dense_min_symbols" yaml:"dense_min_symbols"`
	DenseMaxWords   int `json:"dense_max_words" yaml:"dense_max_words"`
}

// Source 检索来源
type Source struct {
	Rank    int    `json:"rank"`
	Source  string `json:"source"`
	ChunkID int    `json:"chunk_id"`
}

// IngestResult 导入结果
type IngestResult struct {
	Files   int `json:"files"`
	Skipped int `json:"skipped"`
	Chunks  int `json:"chunks"`
}

// ErrorCode 错误代码枚举
type ErrorCode string

const (
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrInputTooLarge ErrorCode = "INPUT_TOO_LARGE"
	ErrEncoding      ErrorCode = "ENCODING_ERROR"
	ErrFileNotFound  ErrorCode = "FILE_NOT_FOUND"
	ErrPDF           ErrorCode = "PDF_ERROR"
	ErrEmbedding     ErrorCode = "EMBEDDING_ERROR"
	ErrRetrieval     ErrorCode = "RETRIEVAL_ERROR"
	ErrAPICall       ErrorCode = "API_CALL_ERROR"
	ErrConfig        ErrorCode = "CONFIG_ERROR"
	ErrInternal      ErrorCode = "INTERNAL_ERROR"
)

// AppError 应用错误
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	msg := e.Message
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// CodeOf returns the ErrorCode carried by err, or "" when err is not an AppError.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
