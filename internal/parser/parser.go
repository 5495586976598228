package parser

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/buger/jsonparser"
	"github.com/mcncl/jsonexport/internal/errors"
	"github.com/mcncl/jsonexport/internal/models"
	"github.com/spf13/afero"
)

// StripControlCharacters removes control characters that often ride along
// with JSON pasted from terminals or rich text.
func StripControlCharacters(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// ParseString parses JSON text after stripping control characters.
func ParseString(jsonString string) (models.IntermediateRepresentation, error) {
	cleaned := StripControlCharacters(jsonString)
	if strings.TrimSpace(cleaned) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return ParseBytes([]byte(cleaned))
}

// ParseBytes parses already-cleaned JSON text into an ordered value tree.
func ParseBytes(data []byte) (models.IntermediateRepresentation, error) {
	raw, err := validate(data)
	if err != nil {
		return models.IntermediateRepresentation{}, err
	}

	root, err := buildValue(raw)
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewParsingError("failed to read JSON value", errors.Mark(err, errors.ErrMalformedJSON))
	}

	return models.IntermediateRepresentation{Root: root}, nil
}

// validate checks that data holds exactly one JSON value and returns it.
func validate(data []byte) (json.RawMessage, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))

	var raw json.RawMessage
	if err := decoder.Decode(&raw); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewInputError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		var syntaxError *json.SyntaxError
		if stderrors.As(err, &syntaxError) {
			return nil, errors.NewParsingError(
				fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
				errors.ErrMalformedJSON,
			)
		}
		// io.ErrUnexpectedEOF and friends: the document was cut short
		return nil, errors.NewParsingError("failed to decode JSON", errors.Mark(err, errors.ErrMalformedJSON))
	}

	var trailing json.RawMessage
	if err := decoder.Decode(&trailing); !stderrors.Is(err, io.EOF) {
		if err != nil {
			return nil, errors.NewParsingError("invalid trailing data after first JSON value", errors.Mark(err, errors.ErrMalformedJSON))
		}
		return nil, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMalformedJSON)
	}

	return raw, nil
}

func buildValue(data []byte) (*models.Value, error) {
	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, err
	}
	return convert(value, dataType)
}

func convert(value []byte, dataType jsonparser.ValueType) (*models.Value, error) {
	switch dataType {
	case jsonparser.Null:
		return models.NewNull(), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(value)
		if err != nil {
			return nil, err
		}
		return models.NewBool(b), nil
	case jsonparser.Number:
		return models.NewNumber(string(value)), nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return nil, err
		}
		return models.NewString(s), nil
	case jsonparser.Array:
		return convertArray(value)
	case jsonparser.Object:
		return convertObject(value)
	}
	return nil, errors.Newf("unexpected JSON value type %s", dataType)
}

func convertObject(data []byte) (*models.Value, error) {
	obj := models.NewObject()
	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		child, err := convert(value, dataType)
		if err != nil {
			return err
		}
		// key may point into a reused unescape buffer
		obj.Set(string(key), child)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func convertArray(data []byte) (*models.Value, error) {
	arr := models.NewArray()
	var convErr error
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if convErr != nil {
			return
		}
		if err != nil {
			convErr = err
			return
		}
		child, err := convert(value, dataType)
		if err != nil {
			convErr = err
			return
		}
		arr.Array = append(arr.Array, child)
	})
	if err != nil {
		return nil, err
	}
	if convErr != nil {
		return nil, convErr
	}
	return arr, nil
}

// ReadFile returns the contents of filePath, mapping a missing file to
// ErrFileNotFound.
func ReadFile(fs afero.Fs, filePath string) (string, error) {
	if strings.TrimSpace(filePath) == "" {
		return "", errors.NewInputError("file path is empty", errors.ErrFileNotFound)
	}
	data, err := afero.ReadFile(fs, filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return "", errors.NewInputError(
			fmt.Sprintf("failed to read file '%s'", filePath),
			err,
		)
	}
	return string(data), nil
}
