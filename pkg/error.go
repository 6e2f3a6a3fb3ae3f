package mmcheck

import "fmt"

type noSuchEnv struct {
	Name string
}

func (e *noSuchEnv) Error() string {
	return fmt.Sprintf("no such environment: %s", e.Name)
}

type badEnvName struct {
	Name string
}

func (e *badEnvName) Error() string {
	return fmt.Sprintf("bad environment name: %q", e.Name)
}

type badEncoding struct {
	What  string
	error error
}

func (e *badEncoding) Error() string {
	return fmt.Sprintf("bad base64 in %s: %s", e.What, e.error.Error())
}

type parseError struct {
	error error
}

func (e *parseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.error.Error())
}

type validationError struct {
	error error
}

func (e *validationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.error.Error())
}

type verifyError struct {
	Name  string
	error error
}

func (e *verifyError) Error() string {
	return fmt.Sprintf("proof check failed for %s: %s", e.Name, e.error.Error())
}

type specMismatch struct {
	Name  string
	error error
}

func (e *specMismatch) Error() string {
	return fmt.Sprintf("proof file for %s does not match its declaration file: %s", e.Name, e.error.Error())
}
