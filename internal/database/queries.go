/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

const (
	// Account queries
	queryGetActiveAccounts = `
		SELECT id, name, email, created_at, updated_at
		FROM accounts
		WHERE active = 1
		ORDER BY created_at`

	queryInsertAccount = `
		INSERT INTO accounts (id, name, email) VALUES (?, ?, ?)`

	queryGetAccountById = `
		SELECT id, name, email, created_at, updated_at
		FROM accounts
		WHERE id = ? AND active = 1`

	// Address queries
	queryInsertAddress = `
		INSERT INTO addresses (id, account_id, address)
		VALUES (?, ?, ?)`

	queryGetAccountAddresses = `
		SELECT id, account_id, address, created_at
		FROM addresses
		WHERE account_id = ?
		ORDER BY created_at, rowid`

	queryFindAccountByAddress = `
		SELECT a.id, a.name, a.email, a.created_at, a.updated_at
		FROM accounts a
		JOIN addresses d ON a.id = d.account_id
		WHERE d.address = ? AND a.active = 1`

	// Journal queries
	queryInsertJournalLeg = `
		INSERT INTO journal_legs (
			id, journal_id, account_path, currency, debit, credit,
			type, pending, hash, related_journal, payee_addresses,
			sats, cents, fee, fee_cents, memo, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryFindJournalLeg = `
		SELECT journal_id, account_path, currency, debit, credit,
		       type, pending, hash, related_journal, payee_addresses,
		       sats, cents, fee, fee_cents, memo, created_at
		FROM journal_legs
		WHERE account_path = ? AND type = ? AND hash = ?
		LIMIT 1`

	queryAccountBalance = `
		SELECT COALESCE(SUM(debit - credit), 0)
		FROM journal_legs
		WHERE account_path = ? AND currency = ?`

	queryAccountHistory = `
		SELECT journal_id, account_path, currency, debit, credit,
		       type, pending, hash, related_journal, payee_addresses,
		       sats, cents, fee, fee_cents, memo, created_at
		FROM journal_legs
		WHERE account_path = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`

	// Reward queries
	queryCheckRewardClaim = `
		SELECT id FROM reward_claims WHERE account_id = ? AND quiz_question_id = ? LIMIT 1`

	queryInsertRewardClaim = `
		INSERT INTO reward_claims (id, account_id, quiz_question_id) VALUES (?, ?, ?)`
)
