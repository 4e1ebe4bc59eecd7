package pipeline

import (
	"errors"

	"lazo-pipeline/internal/app/analysis"
	"lazo-pipeline/internal/app/api/provider"
)

// GenericErrorMessage is shown when no category message applies
const GenericErrorMessage = "Processing error occurred. Please try again or contact support."

var transcriptionMessages = map[string]string{
	provider.CodeFileTooLarge:   "The audio file is too large to process.",
	provider.CodeInvalidInput:   "The audio file could not be processed. Please check the format and try again.",
	provider.CodeInvalidRequest: "The audio file could not be processed. Please check the format and try again.",
	provider.CodeRateLimited:    "The transcription service is busy. Please try again in a few minutes.",
	provider.CodeNetworkError:   "The transcription service could not be reached. Please try again later.",
	provider.CodeServerError:    "The transcription service could not be reached. Please try again later.",
	provider.CodeAuthFailed:     "The transcription service is temporarily unavailable. Please try again later.",
	provider.CodeMissingAPIKey:  "The transcription service is temporarily unavailable. Please try again later.",
}

// PublicMessage maps a background failure to the text stored on the job.
// Backend response bodies never reach the caller.
func PublicMessage(err error) string {
	var tErr *provider.TranscriptionError
	if errors.As(err, &tErr) {
		if msg, ok := transcriptionMessages[tErr.Code]; ok {
			return msg
		}
		return GenericErrorMessage
	}

	var aErr *analysis.Error
	if errors.As(err, &aErr) {
		if aErr.Code == analysis.CodeParse {
			return "The clinical analysis could not be generated. Please try again."
		}
		return "The analysis service is temporarily unavailable. Please try again later."
	}

	return GenericErrorMessage
}
