package internal

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

func GenerateId() string {
	return uuid.Must(uuid.NewRandom()).String()
}

// Envs builds the environment map handed to each Configure, values read
// from dotenv files are overridden by the process environment; files that
// don't exist are skipped
func Envs(files ...string) (map[string]string, error) {
	envs := make(map[string]string)
	for _, file := range files {
		if file == "" {
			continue
		}
		fileEnvs, err := godotenv.Read(file)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, errors.Wrapf(err, "reading env file %s", file)
		}
		for key, value := range fileEnvs {
			envs[key] = value
		}
	}
	for _, env := range os.Environ() {
		if s := strings.Split(env, "="); len(s) > 1 {
			envs[s[0]] = strings.Join(s[1:], "=")
		}
	}
	return envs, nil
}

// DoRequest executes a json request and returns the status code and body;
// when the status code is 2xx and v is provided the body is unmarshalled
// into v[0]
func DoRequest(client *http.Client, uri, method string, input interface{}, v ...interface{}) (int, []byte, error) {
	var body io.Reader

	if input != nil {
		byts, err := json.Marshal(input)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewBuffer(byts)
	}
	request, err := http.NewRequest(method, uri, body)
	if err != nil {
		return 0, nil, err
	}
	request.Header.Set("Content-Type", "application/json")
	response, err := client.Do(request)
	if err != nil {
		return 0, nil, err
	}
	defer response.Body.Close()
	byts, err := io.ReadAll(response.Body)
	if err != nil {
		return response.StatusCode, nil, err
	}
	if response.StatusCode >= 200 && response.StatusCode < 300 && len(v) > 0 && len(byts) > 0 {
		if err := json.Unmarshal(byts, v[0]); err != nil {
			return response.StatusCode, byts, err
		}
	}
	return response.StatusCode, byts, nil
}
