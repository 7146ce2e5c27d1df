package testutil

import (
	"encoding/json"

	"compsbot/model"
)

// SampleAddress is a well-formed US street address used across tests.
const SampleAddress = "123 Main St, Springfield"

// SampleCompsJSON is a trimmed property-comps payload in the shape the
// listings API returns.
const SampleCompsJSON = `{"comps":[` +
	`{"zpid":1001,"address":{"streetAddress":"125 Main St","city":"Springfield"},"price":412000,"bedrooms":3,"bathrooms":2,"livingArea":1650},` +
	`{"zpid":1002,"address":{"streetAddress":"9 Oak Ave","city":"Springfield"},"price":389500,"bedrooms":3,"bathrooms":1.5,"livingArea":1480}` +
	`]}`

// SampleSummaryHTML is a well-formed HTML summary like the model produces.
const SampleSummaryHTML = "```html\n<html><body><h1>Market Summary</h1>" +
	"<p>Two comparable homes near the subject property.</p>" +
	"<ul><li>125 Main St: $412,000</li><li>9 Oak Ave: $389,500</li></ul>" +
	"<table><tr><th>Address</th><th>Price</th></tr><tr><td>125 Main St</td><td>$412,000</td></tr></table>" +
	"</body></html>\n```"

// ToolCall builds a tool call whose arguments carry input under the "input"
// key, the way models invoke single-string tools.
func ToolCall(id, name, input string) model.ToolCall {
	args, _ := json.Marshal(map[string]string{"input": input})
	return model.ToolCall{ID: id, Name: name, Arguments: string(args)}
}

// Conversation returns a seeded thread: system prompt, one question and the
// model's answer.
func Conversation(systemPrompt string) []model.Message {
	return []model.Message{
		model.SystemMessage(systemPrompt),
		model.HumanMessage("What are the comps for " + SampleAddress + "?"),
		model.AIMessage("Here is the summary.", nil),
	}
}
