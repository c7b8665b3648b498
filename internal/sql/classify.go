/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sql

// Classify inspects the first token and returns the statement kind.
// Anything other than SELECT, INSERT, UPDATE or DELETE is
// KindUnrecognized; whether that is an error is up to the caller.
func Classify(tokens []Token) Kind {
	if len(tokens) == 0 || tokens[0].Type != TokenKeyword {
		return KindUnrecognized
	}
	switch tokens[0].Value {
	case "SELECT":
		return KindSelect
	case "INSERT":
		return KindInsert
	case "UPDATE":
		return KindUpdate
	case "DELETE":
		return KindDelete
	default:
		return KindUnrecognized
	}
}

// ClassifyText tokenizes text and classifies it.
func ClassifyText(text string) Kind {
	return Classify(Tokenize(text))
}
