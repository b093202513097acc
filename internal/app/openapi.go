package app

// OpenAPISpec is the OpenAPI 3.0 document served by the docs endpoints
var OpenAPISpec = []byte(`openapi: 3.0.3
info:
  title: Chat-Pulse API
  description: Two-party chat conversation analytics
  version: 1.0.0
servers:
  - url: /api/v1
paths:
  /chats/{chatId}/statistics:
    get:
      summary: Compute chat statistics
      parameters:
        - name: chatId
          in: path
          required: true
          schema:
            type: string
        - name: user_id
          in: query
          required: true
          description: Requesting account, must match the configured owner
          schema:
            type: string
      responses:
        "200":
          description: Computed statistics
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/AnalysisResult"
        "400":
          description: Missing user_id
        "403":
          description: Requester is not the owner
        "422":
          description: Chat lacks messages from two participants
  /chats/{chatId}/report:
    post:
      summary: Render and deliver the chat report
      parameters:
        - name: chatId
          in: path
          required: true
          schema:
            type: string
        - name: user_id
          in: query
          required: true
          schema:
            type: string
      responses:
        "202":
          description: Report delivered
        "403":
          description: Requester is not the owner
        "422":
          description: Chat lacks messages from two participants
  /chats/{chatId}/sync:
    post:
      summary: Force a history re-sync into the cache
      parameters:
        - name: chatId
          in: path
          required: true
          schema:
            type: string
        - name: user_id
          in: query
          required: true
          schema:
            type: string
      responses:
        "204":
          description: History synced
        "403":
          description: Requester is not the owner
  /chats/{chatId}/export:
    post:
      summary: Archive the raw chat history to object storage
      parameters:
        - name: chatId
          in: path
          required: true
          schema:
            type: string
        - name: user_id
          in: query
          required: true
          schema:
            type: string
      responses:
        "201":
          description: Export stored
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/ExportOutput"
        "403":
          description: Requester is not the owner
        "422":
          description: Chat history is empty
components:
  schemas:
    AnalysisResult:
      type: object
      properties:
        total_messages:
          type: integer
        user_a:
          $ref: "#/components/schemas/UserSummary"
        user_b:
          $ref: "#/components/schemas/UserSummary"
        message_counts:
          type: object
          additionalProperties:
            type: integer
        max_session_hours:
          type: object
          properties:
            short_6h:
              type: number
            big_12h:
              type: number
        streak_days:
          type: integer
        busiest_days:
          type: array
          items:
            $ref: "#/components/schemas/DayCount"
        quietest_days:
          type: array
          items:
            $ref: "#/components/schemas/DayCount"
    UserSummary:
      type: object
      properties:
        user_id:
          type: string
        messages:
          type: integer
        count_ratio:
          type: number
        message_share:
          type: number
        start_share:
          type: number
        avg_response_seconds:
          type: number
          nullable: true
        avg_text_length:
          type: number
    DayCount:
      type: object
      properties:
        day:
          type: string
          example: 01_06_2024
        count:
          type: integer
    ExportOutput:
      type: object
      properties:
        key:
          type: string
        url:
          type: string
        size:
          type: integer
        uploaded_at:
          type: string
          format: date-time
`)
