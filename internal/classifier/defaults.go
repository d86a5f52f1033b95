// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package classifier

// Risk hints. Endpoints that accept arbitrary uploads through an API carry
// the highest exposure.
const (
	hintChat       = 0.7
	hintAPI        = 0.8
	hintMedia      = 0.5
	hintExposureHi = 0.8
	hintExposure   = 0.6
	hintExposureLo = 0.4
)

// DefaultSignatures returns the built-in AI endpoint registry. Operators can
// replace it entirely through configuration.
func DefaultSignatures() []Signature {
	return []Signature{
		// OpenAI
		{Pattern: "chat.openai.com", ToolID: "chatgpt", ToolName: "ChatGPT", Provider: "openai", Category: "llm.chat", DataSensitivity: hintChat, ComplianceExposure: hintExposure},
		{Pattern: "chatgpt.com", ToolID: "chatgpt", ToolName: "ChatGPT", Provider: "openai", Category: "llm.chat", DataSensitivity: hintChat, ComplianceExposure: hintExposure},
		{Pattern: "api.openai.com", ToolID: "openai-api", ToolName: "OpenAI API", Provider: "openai", Category: "llm.api", DataSensitivity: hintAPI, ComplianceExposure: hintExposureHi},
		{Pattern: "platform.openai.com", ToolID: "openai-api", ToolName: "OpenAI API", Provider: "openai", Category: "llm.api", DataSensitivity: hintAPI, ComplianceExposure: hintExposure},
		{Pattern: "oaidalleapiprodscus.blob.core.windows.net", ToolID: "dall-e", ToolName: "DALL-E", Provider: "openai", Category: "image.generation", DataSensitivity: hintMedia, ComplianceExposure: hintExposure},
		{Pattern: "openaiapi-prod.azure-api.net", ToolID: "openai-api", ToolName: "OpenAI API", Provider: "openai", Category: "llm.api", DataSensitivity: hintAPI, ComplianceExposure: hintExposureHi},

		// Anthropic
		{Pattern: "claude.ai", ToolID: "claude", ToolName: "Claude", Provider: "anthropic", Category: "llm.chat", DataSensitivity: hintChat, ComplianceExposure: hintExposure},
		{Pattern: "api.anthropic.com", ToolID: "anthropic-api", ToolName: "Anthropic API", Provider: "anthropic", Category: "llm.api", DataSensitivity: hintAPI, ComplianceExposure: hintExposureHi},

		// Google
		{Pattern: "generativelanguage.googleapis.com", ToolID: "gemini-api", ToolName: "Gemini API", Provider: "google", Category: "llm.api", DataSensitivity: hintAPI, ComplianceExposure: hintExposure},
		{Pattern: "aiplatform.googleapis.com", ToolID: "vertex-ai", ToolName: "Vertex AI", Provider: "google", Category: "llm.api", DataSensitivity: hintAPI, ComplianceExposure: hintExposure},
		{Pattern: "us-central1-aiplatform.googleapis.com", ToolID: "vertex-ai", ToolName: "Vertex AI", Provider: "google", Category: "llm.api", DataSensitivity: hintAPI, ComplianceExposure: hintExposure},
		{Pattern: "europe-west1-aiplatform.googleapis.com", ToolID: "vertex-ai", ToolName: "Vertex AI", Provider: "google", Category: "llm.api", DataSensitivity: hintAPI, ComplianceExposure: hintExposure},
		{Pattern: "asia-east1-aiplatform.googleapis.com", ToolID: "vertex-ai", ToolName: "Vertex AI", Provider: "google", Category: "llm.api", DataSensitivity: hintAPI, ComplianceExposure: hintExposure},
		{Pattern: "gemini.google.com", ToolID: "gemini", ToolName: "Gemini", Provider: "google", Category: "llm.chat", DataSensitivity: hintChat, ComplianceExposure: hintExposure},
		{Pattern: "bard.google.com", ToolID: "gemini", ToolName: "Gemini", Provider: "google", Category: "llm.chat", DataSensitivity: hintChat, ComplianceExposure: hintExposure},
		{Pattern: "makersuite.google.com", ToolID: "ai-studio", ToolName: "Google AI Studio", Provider: "google", Category: "llm.api", DataSensitivity: hintAPI, ComplianceExposure: hintExposure},

		// Azure OpenAI and AWS Bedrock
		{Pattern: "*.openai.azure.com", ToolID: "azure-openai", ToolName: "Azure OpenAI", Provider: "azure-openai", Category: "llm.api", DataSensitivity: hintAPI, ComplianceExposure: hintExposureLo},
		{Pattern: "bedrock-runtime.*.amazonaws.com", ToolID: "aws-bedrock", ToolName: "AWS Bedrock", Provider: "aws-bedrock", Category: "llm.api", DataSensitivity: hintAPI, ComplianceExposure: hintExposureLo},
		{Pattern: "*.bedrock-runtime.*.amazonaws.com", ToolID: "aws-bedrock", ToolName: "AWS Bedrock", Provider: "aws-bedrock", Category: "llm.api", DataSensitivity: hintAPI, ComplianceExposure: hintExposureLo},

		// Model APIs
		{Pattern: "api.cohere.ai", ToolID: "cohere", ToolName: "Cohere", Provider: "cohere", Category: "llm.api", DataSensitivity: hintAPI, ComplianceExposure: hintExposureHi},
		{Pattern: "cohere.com", ToolID: "cohere", ToolName: "Cohere", Provider: "cohere", Category: "llm.api", DataSensitivity: hintAPI, ComplianceExposure: hintExposureHi},
		{Pattern: "mistral.ai", ToolID: "mistral", ToolName: "Mistral", Provider: "mistral", Category: "llm.api", DataSensitivity: hintAPI, ComplianceExposure: hintExposure},
		{Pattern: "huggingface.co", ToolID: "huggingface", ToolName: "Hugging Face", Provider: "huggingface", Category: "ml.hosting", DataSensitivity: hintAPI, ComplianceExposure: hintExposure},
		{Pattern: "replicate.com", ToolID: "replicate", ToolName: "Replicate", Provider: "replicate", Category: "ml.hosting", DataSensitivity: hintAPI, ComplianceExposure: hintExposureHi},
		{Pattern: "together.xyz", ToolID: "together", ToolName: "Together AI", Provider: "together", Category: "ml.hosting", DataSensitivity: hintAPI, ComplianceExposure: hintExposureHi},
		{Pattern: "together.ai", ToolID: "together", ToolName: "Together AI", Provider: "together", Category: "ml.hosting", DataSensitivity: hintAPI, ComplianceExposure: hintExposureHi},
		{Pattern: "perplexity.ai", ToolID: "perplexity", ToolName: "Perplexity", Provider: "perplexity", Category: "llm.search", DataSensitivity: hintChat, ComplianceExposure: hintExposure},
		{Pattern: "groq.com", ToolID: "groq", ToolName: "Groq", Provider: "groq", Category: "llm.api", DataSensitivity: hintAPI, ComplianceExposure: hintExposure},
		{Pattern: "deepseek.com", ToolID: "deepseek", ToolName: "DeepSeek", Provider: "deepseek", Category: "llm.chat", DataSensitivity: hintChat, ComplianceExposure: hintExposureHi},
		{Pattern: "x.ai", ToolID: "grok", ToolName: "Grok", Provider: "xai", Category: "llm.chat", DataSensitivity: hintChat, ComplianceExposure: hintExposure},
		{Pattern: "fireworks.ai", ToolID: "fireworks", ToolName: "Fireworks AI", Provider: "fireworks", Category: "ml.hosting", DataSensitivity: hintAPI, ComplianceExposure: hintExposure},
		{Pattern: "endpoints.anyscale.com", ToolID: "anyscale", ToolName: "Anyscale", Provider: "anyscale", Category: "ml.hosting", DataSensitivity: hintAPI, ComplianceExposure: hintExposure},
		{Pattern: "console.anyscale.com", ToolID: "anyscale", ToolName: "Anyscale", Provider: "anyscale", Category: "ml.hosting", DataSensitivity: hintAPI, ComplianceExposure: hintExposure},
		{Pattern: "api.lepton.ai", ToolID: "lepton", ToolName: "Lepton AI", Provider: "lepton", Category: "ml.hosting", DataSensitivity: hintAPI, ComplianceExposure: hintExposure},
		{Pattern: "api.aleph-alpha.com", ToolID: "aleph-alpha", ToolName: "Aleph Alpha", Provider: "aleph-alpha", Category: "llm.api", DataSensitivity: hintAPI, ComplianceExposure: hintExposureLo},
		{Pattern: "ai21.com", ToolID: "ai21", ToolName: "AI21 Studio", Provider: "ai21", Category: "llm.api", DataSensitivity: hintAPI, ComplianceExposure: hintExposure},
		{Pattern: "api.novita.ai", ToolID: "novita", ToolName: "Novita AI", Provider: "novita", Category: "ml.hosting", DataSensitivity: hintAPI, ComplianceExposure: hintExposure},
		{Pattern: "cerebras.ai", ToolID: "cerebras", ToolName: "Cerebras Inference", Provider: "cerebras", Category: "llm.api", DataSensitivity: hintAPI, ComplianceExposure: hintExposure},
		{Pattern: "openrouter.ai", ToolID: "openrouter", ToolName: "OpenRouter", Provider: "openrouter", Category: "llm.gateway", DataSensitivity: hintAPI, ComplianceExposure: hintExposureHi},
		{Pattern: "api.scale.com", ToolID: "scale", ToolName: "Scale AI", Provider: "scale", Category: "llm.api", DataSensitivity: hintAPI, ComplianceExposure: hintExposure},
		{Pattern: "spellbook.scale.com", ToolID: "scale", ToolName: "Scale AI", Provider: "scale", Category: "llm.api", DataSensitivity: hintAPI, ComplianceExposure: hintExposure},

		// Chat and writing assistants
		{Pattern: "character.ai", ToolID: "character-ai", ToolName: "Character.AI", Provider: "character-ai", Category: "llm.chat", DataSensitivity: hintChat, ComplianceExposure: hintExposure},
		{Pattern: "pi.ai", ToolID: "pi", ToolName: "Pi", Provider: "inflection", Category: "llm.chat", DataSensitivity: hintChat, ComplianceExposure: hintExposure},
		{Pattern: "api.inflection.ai", ToolID: "pi", ToolName: "Pi", Provider: "inflection", Category: "llm.chat", DataSensitivity: hintChat, ComplianceExposure: hintExposure},
		{Pattern: "writer.com", ToolID: "writer", ToolName: "Writer", Provider: "writer", Category: "llm.writing", DataSensitivity: hintChat, ComplianceExposure: hintExposure},
		{Pattern: "jasper.ai", ToolID: "jasper", ToolName: "Jasper", Provider: "jasper", Category: "llm.writing", DataSensitivity: hintChat, ComplianceExposure: hintExposure},
		{Pattern: "copy.ai", ToolID: "copy-ai", ToolName: "Copy.ai", Provider: "copy-ai", Category: "llm.writing", DataSensitivity: hintChat, ComplianceExposure: hintExposure},

		// Media generation
		{Pattern: "stability.ai", ToolID: "stability", ToolName: "Stability AI", Provider: "stability", Category: "image.generation", DataSensitivity: hintMedia, ComplianceExposure: hintExposureLo},
		{Pattern: "midjourney.com", ToolID: "midjourney", ToolName: "Midjourney", Provider: "midjourney", Category: "image.generation", DataSensitivity: hintMedia, ComplianceExposure: hintExposureLo},
		{Pattern: "runwayml.com", ToolID: "runway", ToolName: "Runway", Provider: "runway", Category: "video.generation", DataSensitivity: hintMedia, ComplianceExposure: hintExposureLo},
		{Pattern: "elevenlabs.io", ToolID: "elevenlabs", ToolName: "ElevenLabs", Provider: "elevenlabs", Category: "audio.generation", DataSensitivity: hintMedia, ComplianceExposure: hintExposure},
	}
}
