package otel

import "go.opentelemetry.io/otel/attribute"

func goalAttr(goal string) attribute.KeyValue {
	return attribute.String("scenic.goal", goal)
}

func runVerdictAttr(v string) attribute.KeyValue {
	return attribute.String("scenic.run.verdict", v)
}

func stepIndexAttr(i int) attribute.KeyValue {
	return attribute.Int("scenic.step.index", i)
}

func stepVerdictAttr(v string) attribute.KeyValue {
	return attribute.String("scenic.step.verdict", v)
}

func goalVerdictAttr(v string) attribute.KeyValue {
	return attribute.String("scenic.step.goal_verdict", v)
}

func llmPurposeAttr(p string) attribute.KeyValue {
	return attribute.String("llm.purpose", p)
}

func llmInputTokensAttr(tokens int) attribute.KeyValue {
	return attribute.Int("llm.input_tokens", tokens)
}

func llmOutputTokensAttr(tokens int) attribute.KeyValue {
	return attribute.Int("llm.output_tokens", tokens)
}

func llmImagesAttr(n int) attribute.KeyValue {
	return attribute.Int("llm.images", n)
}

func toolNameAttr(name string) attribute.KeyValue {
	return attribute.String("tool.name", name)
}

func toolArgsAttr(args string) attribute.KeyValue {
	return attribute.String("tool.args", args)
}

func toolRejectedAttr(rejected bool) attribute.KeyValue {
	return attribute.Bool("tool.rejected", rejected)
}

func eventDataAttr(data string) attribute.KeyValue {
	return attribute.String("event.data", data)
}
