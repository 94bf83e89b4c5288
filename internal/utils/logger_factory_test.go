package utils_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/releasetrain/internal/utils"
)

const testLogMessageConstant = "logger_factory_test_message"

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name                string
		requestedLogLevel   utils.LogLevel
		requestedLogFormat  utils.LogFormat
		expectError         bool
		expectStructuredLog bool
		expectSuppressed    bool
	}{
		{name: "debug_structured", requestedLogLevel: utils.LogLevelDebug, requestedLogFormat: utils.LogFormatStructured, expectStructuredLog: true},
		{name: "info_structured", requestedLogLevel: utils.LogLevelInfo, requestedLogFormat: utils.LogFormatStructured, expectStructuredLog: true},
		{name: "info_console", requestedLogLevel: utils.LogLevelInfo, requestedLogFormat: utils.LogFormatConsole},
		{name: "error_suppresses_info", requestedLogLevel: utils.LogLevelError, requestedLogFormat: utils.LogFormatConsole, expectSuppressed: true},
		{name: "unsupported_level", requestedLogLevel: utils.LogLevel("verbose"), requestedLogFormat: utils.LogFormatStructured, expectError: true},
		{name: "unsupported_format", requestedLogLevel: utils.LogLevelInfo, requestedLogFormat: utils.LogFormat("xml"), expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			output := &bytes.Buffer{}
			logger, creationError := utils.NewLoggerFactoryWithOutput(output).CreateLogger(testCase.requestedLogLevel, testCase.requestedLogFormat)
			if testCase.expectError {
				require.Error(testInstance, creationError)
				require.Nil(testInstance, logger)
				return
			}
			require.NoError(testInstance, creationError)

			logger.Info(testLogMessageConstant)
			require.NoError(testInstance, logger.Sync())

			trimmedOutput := bytes.TrimSpace(output.Bytes())
			if testCase.expectSuppressed {
				require.Empty(testInstance, trimmedOutput)
				return
			}
			require.Contains(testInstance, string(trimmedOutput), testLogMessageConstant)
			require.Equal(testInstance, testCase.expectStructuredLog, json.Valid(trimmedOutput))
		})
	}
}

func TestParseLogSettings(testInstance *testing.T) {
	level, levelError := utils.ParseLogLevel(" DEBUG ")
	require.NoError(testInstance, levelError)
	require.Equal(testInstance, utils.LogLevelDebug, level)

	format, formatError := utils.ParseLogFormat("Console")
	require.NoError(testInstance, formatError)
	require.Equal(testInstance, utils.LogFormatConsole, format)

	_, invalidLevelError := utils.ParseLogLevel("trace")
	require.Error(testInstance, invalidLevelError)
	_, invalidFormatError := utils.ParseLogFormat("xml")
	require.Error(testInstance, invalidFormatError)
}
