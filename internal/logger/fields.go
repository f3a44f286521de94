package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"

	FieldJobTitle    = "job_title"
	FieldCompany     = "job_company"
	FieldLocation    = "job_location"
	FieldFingerprint = "fingerprint"
)

// StringField is a key/value pair that is dropped when either side is blank.
type StringField struct {
	Key   string
	Value string
}

// StringFields turns the pairs into zap fields, trimming both sides and skipping
// blank ones.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		key, value := strings.TrimSpace(f.Key), strings.TrimSpace(f.Value)
		if key != "" && value != "" {
			result = append(result, zap.String(key, value))
		}
	}
	return result
}

// WithFields attaches fields to the logger. A nil logger becomes a no-op one.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// CommonFields describes the generative backend serving a request.
func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, CommonFields(provider, model)...)
}

// JobFields describes a scraped job.
func JobFields(title, company, location string) []zap.Field {
	return StringFields(
		StringField{Key: FieldJobTitle, Value: title},
		StringField{Key: FieldCompany, Value: company},
		StringField{Key: FieldLocation, Value: location},
	)
}

// WithJob attaches the job and its lookup fingerprint to the logger.
func WithJob(logger *zap.Logger, fingerprint, title, company, location string) *zap.Logger {
	fields := append(JobFields(title, company, location),
		StringFields(StringField{Key: FieldFingerprint, Value: fingerprint})...)
	return WithFields(logger, fields...)
}
