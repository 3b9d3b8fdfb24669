package iocli

//go:generate moq -out io_mock.go . IO

// IO is the terminal the CLI talks to
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	// ReadSecret читает значение без эха (bearer token)
	ReadSecret(prompt string) (string, error)
	Write(p []byte) (n int, err error)
}
