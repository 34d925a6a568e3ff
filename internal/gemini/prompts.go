package gemini

import (
	"fmt"
	"strings"
	"time"
)

const inventoryInstruction = `You are a smart kitchen assistant.
Analyze the image provided and list all identifiable food ingredients.
Estimate expiration urgency based on visual cues (e.g., browning bananas = soon).
Return a JSON array of objects with keys: name (string), quantity (string estimate), category (one of: produce, dairy, protein, pantry, other), and expiryDate (string YYYY-MM-DD estimate relative to today).
Do not include markdown formatting. Return raw JSON.`

const recipeInstruction = `You are a creative chef focused on "zero waste" cooking.
Suggest recipes based on the user's available ingredients.
Prioritize ingredients that are expiring soon.
If Google Search is used, ensure recipe steps are accurate and safe.
Return a JSON object with a 'recipes' array. Each recipe should have: title, description, cookingTime, difficulty, usedIngredients (array of strings), missingIngredients (array of strings), instructions (array of strings), and calories (number estimate).`

const storesPrompt = "Find the best rated grocery stores near me that are open right now. Give a short summary of the top choice."

// noStoresText is shown when the maps model answers with no text.
const noStoresText = "No stores found."

func recognitionPrompt(now time.Time) string {
	return fmt.Sprintf("Today is %s. Identify ingredients in this image. Return valid JSON only.", now.Format("2006-01-02"))
}

func recipePrompt(summaries []string, prefs string) string {
	prefs = strings.TrimSpace(prefs)
	if prefs == "" {
		prefs = "None"
	}
	return fmt.Sprintf("I have these ingredients: %s.\nPreferences: %s.\nSuggest 3 creative recipes to use up the expiring items.",
		strings.Join(summaries, ", "), prefs)
}
