package log

import "log/slog"

func WizardID[T ~string](id T) slog.Attr {
	return slog.String("wizard_id", string(id))
}

func StepID[T ~string](id T) slog.Attr {
	return slog.String("step_id", string(id))
}

func DraftID[T ~string](id T) slog.Attr {
	return slog.String("draft_id", string(id))
}

func Status[T ~string](status T) slog.Attr {
	return slog.String("status", string(status))
}

func Category[T ~string](category T) slog.Attr {
	return slog.String("category", string(category))
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}

func ErrorString(msg string) slog.Attr {
	return slog.String("error", msg)
}
