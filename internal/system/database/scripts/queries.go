/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package scripts

var CreateDocumentsTable = map[string]string{
	"postgres": `
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id         TEXT NOT NULL,
		data       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (collection, id)
	);

	CREATE OR REPLACE FUNCTION notify_document_change() RETURNS trigger AS $$
	BEGIN
		IF TG_OP = 'DELETE' THEN
			PERFORM pg_notify('document_changes', OLD.collection);
		ELSE
			PERFORM pg_notify('document_changes', NEW.collection);
		END IF;
		RETURN NULL;
	END;
	$$ LANGUAGE plpgsql;

	DROP TRIGGER IF EXISTS documents_notify ON documents;
	CREATE TRIGGER documents_notify AFTER INSERT OR UPDATE OR DELETE ON documents
		FOR EACH ROW EXECUTE FUNCTION notify_document_change();`,
	"sqlite": `
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id         TEXT NOT NULL,
		data       TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (collection, id)
	)`,
}

var GetDocument = map[string]string{
	"postgres": `SELECT id, data::text AS data FROM documents WHERE collection = $1 AND id = $2`,
	"sqlite":   `SELECT id, data FROM documents WHERE collection = ? AND id = ?`,
}

var GetDocumentForUpdate = map[string]string{
	"postgres": `SELECT data::text AS data FROM documents WHERE collection = $1 AND id = $2 FOR UPDATE`,
	"sqlite":   `SELECT data FROM documents WHERE collection = ? AND id = ?`,
}

var FindDocuments = map[string]string{
	"postgres": `SELECT id, data::text AS data FROM documents WHERE `,
	"sqlite":   `SELECT id, data FROM documents WHERE `,
}

var UpsertDocument = map[string]string{
	"postgres": `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)
	ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
	"sqlite": `INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)
	ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
}

var UpdateDocument = map[string]string{
	"postgres": `UPDATE documents SET data = $3::jsonb, updated_at = now() WHERE collection = $1 AND id = $2`,
	"sqlite":   `UPDATE documents SET data = ?3, updated_at = CURRENT_TIMESTAMP WHERE collection = ?1 AND id = ?2`,
}

var DeleteDocument = map[string]string{
	"postgres": `DELETE FROM documents WHERE collection = $1 AND id = $2`,
	"sqlite":   `DELETE FROM documents WHERE collection = ? AND id = ?`,
}
